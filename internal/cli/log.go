package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rota-app/rota/internal/changelog"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Since string
	Until string
	Kind  string
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the change log",
		Long: `Show change-log entries, newest last, optionally filtered by a
date range and entry kind.

Example:
  rota log
  rota log --since 2026-08-01 --kind switched`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Since, "since", "", "only entries on or after this date (2006-01-02)")
	cmd.Flags().StringVar(&opts.Until, "until", "", "only entries before this date (2006-01-02)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only entries of this kind (created|switched|deleted|undone|redone)")

	return cmd
}

func runLog(cmd *cobra.Command, opts *LogOptions) (err error) {
	ctx := cmd.Context()

	var from, to time.Time
	if opts.Since != "" {
		if from, err = time.ParseInLocation("2006-01-02", opts.Since, time.Local); err != nil {
			return renderError(cmd.ErrOrStderr(), opts.RootOptions, fmt.Errorf("parse --since: %w", err))
		}
	}
	if opts.Until != "" {
		if to, err = time.ParseInLocation("2006-01-02", opts.Until, time.Local); err != nil {
			return renderError(cmd.ErrOrStderr(), opts.RootOptions, fmt.Errorf("parse --until: %w", err))
		}
	}
	var pred func(changelog.Entry) bool
	if opts.Kind != "" {
		kind := changelog.Kind(opts.Kind)
		if !kind.Valid() {
			return renderError(cmd.ErrOrStderr(), opts.RootOptions, fmt.Errorf("unknown kind %q", opts.Kind))
		}
		pred = func(e changelog.Entry) bool { return e.Kind == kind }
	}

	app, err := openApp(ctx, opts.RootOptions)
	if err != nil {
		return renderError(cmd.ErrOrStderr(), opts.RootOptions, err)
	}
	defer func() {
		if cerr := app.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	entries := app.Engine.Log().Query(pred, from, to)
	return render(cmd.OutOrStdout(), opts.RootOptions, entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "no change-log entries")
			return
		}
		for _, e := range entries {
			fmt.Fprintf(w, "%6d  %s  %-8s  %-10s  %s\n",
				e.Seq, e.At.Format("2006-01-02 15:04"), e.Kind, e.Actor, describe(e))
		}
	})
}

func describe(e changelog.Entry) string {
	switch e.Kind {
	case changelog.KindCreated:
		return fmt.Sprintf("%s <- %s", e.Date(), e.After.TemplateID)
	case changelog.KindDeleted:
		return fmt.Sprintf("%s (was %s)", e.Date(), e.Before.TemplateID)
	case changelog.KindSwitched, changelog.KindRedone:
		return fmt.Sprintf("%s: %s -> %s", e.Date(), snapshotTemplate(e.Before), snapshotTemplate(e.After))
	case changelog.KindUndone:
		return fmt.Sprintf("%s: %s -> %s", e.Date(), snapshotTemplate(e.Before), snapshotTemplate(e.After))
	default:
		return e.Date()
	}
}

func snapshotTemplate(s *changelog.Snapshot) string {
	if s == nil || s.TemplateID == "" {
		return "(none)"
	}
	return s.TemplateID
}
