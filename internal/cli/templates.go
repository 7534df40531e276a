package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rota-app/rota/internal/state"
)

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the shift templates in the catalog",
		Long: `List the shift templates currently available for assignment,
with their working windows. Overnight templates roll the end time over
to the next day.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplates(cmd, opts)
		},
	}
}

func runTemplates(cmd *cobra.Command, opts *RootOptions) (err error) {
	ctx := cmd.Context()

	app, err := openApp(ctx, opts)
	if err != nil {
		return renderError(cmd.ErrOrStderr(), opts, err)
	}
	defer func() {
		if cerr := app.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	snap := app.Engine.State()
	templates := make([]state.ShiftTemplate, 0, len(snap.Catalog.Templates))
	for _, tmpl := range snap.Catalog.Templates {
		templates = append(templates, tmpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })

	return render(cmd.OutOrStdout(), opts, templates, func(w io.Writer) {
		if len(templates) == 0 {
			fmt.Fprintln(w, "no templates in catalog")
			return
		}
		for _, tmpl := range templates {
			window := fmt.Sprintf("%s-%s", tmpl.Start, tmpl.End)
			if tmpl.Overnight() {
				window += " (overnight)"
			}
			fmt.Fprintf(w, "%-12s  %-20s  %s\n", tmpl.ID, tmpl.Name, window)
		}
	})
}
