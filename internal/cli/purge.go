package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove change-log entries past the retention window",
		Long: `Remove change-log entries older than the configured retention
window. With retention_days set to 0 the log is kept forever and purge
is a no-op. Purging the same window twice removes nothing the second
time.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPurge(cmd, opts)
		},
	}
}

func runPurge(cmd *cobra.Command, opts *RootOptions) (err error) {
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

	removed, err := app.Engine.PurgeChangeLog(ctx)
	if err != nil {
		return renderError(cmd.ErrOrStderr(), opts, err)
	}
	if err := app.Engine.Drain(ctx); err != nil {
		return renderError(cmd.ErrOrStderr(), opts, err)
	}

	retention := app.Engine.State().Settings.RetentionDays
	payload := map[string]any{"removed": removed, "retention_days": retention}
	return render(cmd.OutOrStdout(), opts, payload, func(w io.Writer) {
		if retention <= 0 {
			fmt.Fprintln(w, "retention disabled, nothing purged")
			return
		}
		fmt.Fprintf(w, "purged %d change-log entries older than %d days\n", removed, retention)
	})
}
