// Package status implements the status command.
package status

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tphakala/plasma-spotlight/internal/conf"
	"github.com/tphakala/plasma-spotlight/internal/cycle"
	"github.com/tphakala/plasma-spotlight/internal/logger"
	"github.com/tphakala/plasma-spotlight/internal/schedule"
)

// Reporter renders the last successful run.
type Reporter interface {
	StatusText() string
}

// Command returns the status command.
func Command(ctx *conf.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show when the wallpaper was last updated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Global().Module("cycle")
			svc := cycle.NewService(cycle.Settings{}, cycle.Deps{
				Scheduler: schedule.New(schedule.NewFileStore(ctx.Settings.MarkerPath()),
					schedule.WithLogger(log.Module("schedule"))),
				Logger: log,
			})
			return Print(cmd.OutOrStdout(), svc)
		},
	}
}

// Print writes the last-run line reported by r.
func Print(w io.Writer, r Reporter) error {
	_, err := fmt.Fprintf(w, "Last run: %s\n", r.StatusText())
	return err
}
