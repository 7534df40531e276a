package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <date>",
		Short: "Clear the shift on a date",
		Long: `Clear the shift assigned to a date.

The removal is recorded in the change log but is not undoable; only
switches enter the undo stack.

Example:
  rota remove 2026-09-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, rootOpts, args[0], func(app *App) error {
				return app.Engine.RemoveShift(args[0], rootOpts.Actor)
			}, fmt.Sprintf("removed shift on %s", args[0]))
		},
	}
}
