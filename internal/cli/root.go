package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Now     string // overrides the clock, YYYY-MM-DD or RFC 3339
}

// NewRootCommand creates the root command for the upkeep CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "upkeep",
		Short: "Work order schedule generator",
		Long: `upkeep computes the due dates of recurring maintenance work orders,
exports them as iCalendar to-dos and keeps a SQLite schedule in sync.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Now, "now", "", "current date used for open-ended schedules")

	cmd.AddCommand(NewDatesCommand(opts))
	cmd.AddCommand(NewICSCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))

	return cmd
}

func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *RootOptions) clock() (func() time.Time, error) {
	if o.Now == "" {
		return time.Now, nil
	}
	now, err := parseTime(o.Now)
	if err != nil {
		return nil, fmt.Errorf("invalid --now: %w", err)
	}
	return func() time.Time { return now }, nil
}

// parseTime accepts a plain date (midnight UTC) or an RFC 3339 timestamp.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
