// Package cmd assembles the plasma-spotlight command tree.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/plasma-spotlight/cmd/configcmd"
	"github.com/tphakala/plasma-spotlight/cmd/run"
	"github.com/tphakala/plasma-spotlight/cmd/set"
	"github.com/tphakala/plasma-spotlight/cmd/status"
	"github.com/tphakala/plasma-spotlight/cmd/timer"
	"github.com/tphakala/plasma-spotlight/internal/buildinfo"
	"github.com/tphakala/plasma-spotlight/internal/conf"
	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/logger"
)

// skipSettings marks commands that must work without a loadable config file.
const skipSettings = "skip-settings"

const sentryFlushTimeout = 2 * time.Second

// RootCommand creates and returns the root command
func RootCommand(ctx *conf.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           conf.AppName,
		Short:         "Daily Bing and Windows Spotlight wallpapers for KDE Plasma",
		Version:       buildinfo.Current().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&ctx.ConfigFile, "config", "", "Config file (default "+conf.DefaultConfigFile()+")")
	rootCmd.PersistentFlags().BoolVarP(&ctx.Debug, "debug", "d", false, "Enable debug output")

	rootCmd.AddCommand(
		run.Command(ctx),
		status.Command(ctx),
		set.Command(ctx),
		timer.Command(ctx),
		configcmd.Command(ctx, skipSettings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipSettings] != "" {
			return nil
		}
		return initialize(ctx)
	}

	return rootCmd
}

// initialize loads settings and sets up logging and telemetry for the subcommand.
func initialize(ctx *conf.Context) error {
	settings, err := conf.Load(ctx.ConfigFile)
	if err != nil {
		return err
	}
	if ctx.Debug {
		settings.Debug = true
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}
	ctx.Settings = settings

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)

	log := central.Module("main")
	if settings.ConfigFile != "" {
		log.Debug("Loaded configuration", logger.String("file", settings.ConfigFile))
	}
	if len(settings.LegacyKeys) > 0 {
		log.Warn("Config file uses old key names, run 'config show' for the current layout",
			logger.String("file", settings.ConfigFile),
			logger.Strings("keys", settings.LegacyKeys))
	}

	if settings.Telemetry.Enabled && settings.Telemetry.DSN != "" {
		if err := errors.InitSentry(settings.Telemetry.DSN, buildinfo.Current().Release(conf.AppName)); err != nil {
			log.Warn("Error telemetry disabled", logger.Error(err))
		}
	}
	return nil
}

// Shutdown flushes telemetry and closes log files. Safe to call more than once.
func Shutdown() {
	errors.FlushSentry(sentryFlushTimeout)
	_ = logger.Global().Close()
}
