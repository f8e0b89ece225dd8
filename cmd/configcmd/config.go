// Package configcmd implements the config command.
package configcmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/plasma-spotlight/internal/conf"
)

// Command returns the config command. skipAnnotation marks subcommands that
// must run without loading the existing configuration.
func Command(ctx *conf.Context, skipAnnotation string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.ConfigFile
			if path == "" {
				path = conf.DefaultConfigFile()
			}
			path = conf.ExpandPath(path)
			if err := conf.WriteDefault(path, conf.Defaults(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Show(cmd.OutOrStdout(), ctx.Settings)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

// Show writes settings as YAML, preceded by the file they came from.
func Show(w io.Writer, settings *conf.Settings) error {
	source := settings.ConfigFile
	if source == "" {
		source = "defaults"
	}
	if _, err := fmt.Fprintf(w, "# source: %s\n", source); err != nil {
		return err
	}
	redacted := *settings
	if redacted.Telemetry.DSN != "" {
		redacted.Telemetry.DSN = "[REDACTED]"
	}
	if len(redacted.Notification.URLs) > 0 {
		redacted.Notification.URLs = []string{fmt.Sprintf("[%d URLs REDACTED]", len(settings.Notification.URLs))}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&redacted); err != nil {
		return err
	}
	return enc.Close()
}
