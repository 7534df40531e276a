package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rota-app/rota/internal/engine"
)

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <date> <template>",
		Short: "Schedule a template on a free date",
		Long: `Schedule a shift template on a free date.

The candidate is checked against every committed shift before anything
is written: overlapping shifts (including overnight shifts spilling in
from the previous day) reject the assignment and list every conflict.

Example:
  rota assign 2026-09-01 day
  rota assign 2026-09-01 night --db ./rota.db --catalog ./rota.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, rootOpts, args[0], func(app *App) error {
				return app.Engine.AssignShift(args[0], args[1], rootOpts.Actor)
			}, fmt.Sprintf("assigned %s on %s", args[1], args[0]))
		},
	}
}

// runMutation is the shared skeleton for assign/switch/remove: open,
// validate+dispatch, drain effects, report the date's final slot.
func runMutation(cmd *cobra.Command, opts *RootOptions, date string, mutate func(*App) error, okText string) (err error) {
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

	if err := mutate(app); err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) && opts.Format == "text" {
			w := cmd.ErrOrStderr()
			fmt.Fprintf(w, "error: %v\n", verr)
			for _, c := range verr.Conflicts {
				fmt.Fprintf(w, "  conflicts with shift on %s (%s - %s)\n", c.ID, c.Start.Format("2006-01-02 15:04"), c.End.Format("2006-01-02 15:04"))
			}
			return err
		}
		return renderError(cmd.ErrOrStderr(), opts, err)
	}

	if err := app.Engine.Drain(ctx); err != nil {
		return renderError(cmd.ErrOrStderr(), opts, err)
	}

	s := app.Engine.State()
	asg, ok := s.Assignment(date)
	data := map[string]any{"date": date, "assigned": ok}
	if ok {
		data["template"] = asg.TemplateID
	}
	return render(cmd.OutOrStdout(), opts, data, func(w io.Writer) {
		fmt.Fprintln(w, okText)
	})
}
