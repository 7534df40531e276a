package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSwitchCommand creates the switch command.
func NewSwitchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <date> <template>",
		Short: "Replace the template on an assigned date",
		Long: `Replace the shift template on an already-assigned date.

Switches are the undoable mutation: each one lands on the undo stack
and invalidates any pending redo history.

Example:
  rota switch 2026-09-01 night`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, rootOpts, args[0], func(app *App) error {
				return app.Engine.SwitchShift(args[0], args[1], rootOpts.Actor)
			}, fmt.Sprintf("switched %s to %s", args[0], args[1]))
		},
	}
}
