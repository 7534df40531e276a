package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rota-app/rota/internal/undo"
)

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the most recent switch",
		Long: `Undo the most recent template switch.

Undoing with an empty history is not an error; it reports that there
was nothing to undo.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, rootOpts, "undo", func(ctx context.Context, app *App) (undo.Result, error) {
				return app.Engine.Undo(ctx, rootOpts.Actor)
			})
		},
	}
}

// NewRedoCommand creates the redo command.
func NewRedoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "redo",
		Short:         "Re-apply the most recently undone switch",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, rootOpts, "redo", func(ctx context.Context, app *App) (undo.Result, error) {
				return app.Engine.Redo(ctx, rootOpts.Actor)
			})
		},
	}
}

func runHistory(cmd *cobra.Command, opts *RootOptions, op string, run func(context.Context, *App) (undo.Result, error)) (err error) {
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

	res, err := run(ctx, app)
	if err != nil {
		return renderError(cmd.ErrOrStderr(), opts, err)
	}
	if err := app.Engine.Drain(ctx); err != nil {
		return renderError(cmd.ErrOrStderr(), opts, err)
	}

	data := map[string]any{"applied": res.Applied}
	if res.Applied {
		data["date"] = res.Date
		data["seq"] = res.Entry.Seq
	}
	return render(cmd.OutOrStdout(), opts, data, func(w io.Writer) {
		if !res.Applied {
			fmt.Fprintf(w, "nothing to %s\n", op)
			return
		}
		fmt.Fprintf(w, "%s applied to %s (seq %d)\n", op, res.Date, res.Entry.Seq)
	})
}
