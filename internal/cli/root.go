// Package cli provides the rota command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DBPath  string
	Catalog string
	Actor   string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rota CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rota",
		Short: "rota - personal shift scheduler",
		Long:  "A personal shift-scheduling tool with a change-log-backed undo history and conflict-checked scheduling.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "rota.db", "path to the schedule database")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "rota.yaml", "path to the template catalog")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", "cli", "actor recorded on change-log entries")

	cmd.AddCommand(NewAssignCommand(opts))
	cmd.AddCommand(NewSwitchCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewUndoCommand(opts))
	cmd.AddCommand(NewRedoCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewPurgeCommand(opts))
	cmd.AddCommand(NewTemplatesCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
