// Package run implements the run command.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/plasma-spotlight/internal/conf"
	"github.com/tphakala/plasma-spotlight/internal/cycle"
	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/logger"
)

// Flags are the per-invocation overrides of the run command.
type Flags struct {
	Refresh          bool
	DownloadOnly     bool
	Sources          string
	SpotlightBatch   int
	UpdateLockscreen bool
	UpdateSDDM       bool
}

// Command returns the run command.
func Command(ctx *conf.Context) *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download new wallpapers and apply one",
		Long: `Fetch today's images from the enabled feeds, store new ones with their
metadata and apply the selected image to the lock screen and login background.

Runs at most once per local day; use --refresh to run again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ApplyFlags(ctx.Settings, flags); err != nil {
				return err
			}
			return execute(cmd.Context(), cmd.OutOrStdout(), ctx.Settings, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "Run even if the wallpaper was already updated today")
	cmd.Flags().BoolVar(&flags.DownloadOnly, "download-only", false, "Download images without applying them")
	cmd.Flags().StringVar(&flags.Sources, "sources", "", "Feeds to download from: bing, spotlight or both")
	cmd.Flags().IntVar(&flags.SpotlightBatch, "spotlight-batch", 0, "Number of Spotlight images to request (1-4)")
	cmd.Flags().BoolVar(&flags.UpdateLockscreen, "update-lockscreen", false, "Update the lock screen even if disabled in the config")
	cmd.Flags().BoolVar(&flags.UpdateSDDM, "update-sddm", false, "Update the login background even if disabled in the config")

	return cmd
}

// ApplyFlags folds command-line overrides into settings and revalidates them.
// The update flags can only enable a target, never disable one.
func ApplyFlags(settings *conf.Settings, flags Flags) error {
	if flags.Sources != "" {
		settings.DownloadSources = flags.Sources
	}
	if flags.SpotlightBatch != 0 {
		if flags.SpotlightBatch < conf.MinSpotlightBatch || flags.SpotlightBatch > conf.MaxSpotlightBatch {
			return errors.Newf("--spotlight-batch must be between %d and %d", conf.MinSpotlightBatch, conf.MaxSpotlightBatch).
				Component("run").
				Category(errors.CategoryValidation).
				Context("value", flags.SpotlightBatch).
				Build()
		}
		settings.Spotlight.BatchCount = flags.SpotlightBatch
	}
	settings.UpdateLockscreen = settings.UpdateLockscreen || flags.UpdateLockscreen
	settings.UpdateSDDM = settings.UpdateSDDM || flags.UpdateSDDM
	return conf.ValidateSettings(settings)
}

func execute(parent context.Context, w io.Writer, settings *conf.Settings, flags Flags) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Global().Module("main")
	svc, client, err := cycle.NewFromSettings(settings, logger.Global().Module("cycle"))
	if err != nil {
		return err
	}
	defer client.Close()

	report, err := svc.RunDownloadCycle(ctx, cycle.Options{
		Force:        flags.Refresh,
		DownloadOnly: flags.DownloadOnly,
	})
	if err != nil {
		return err
	}
	return printReport(w, log, report)
}

// printReport tells the user why nothing happened when the daily gate
// skipped the run; finished runs are only logged.
func printReport(w io.Writer, log logger.Logger, report *cycle.Report) error {
	if report.Skipped {
		_, err := fmt.Fprintf(w, "Already updated today at %s, use --refresh to run again\n",
			report.Decision.LastRun.Format(time.TimeOnly))
		return err
	}
	log.Debug("Run finished",
		logger.String("run_id", report.RunID),
		logger.Bool("applied", report.Applied),
		logger.Duration("elapsed", report.Duration))
	return nil
}
