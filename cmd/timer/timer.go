// Package timer implements the timer command.
package timer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/plasma-spotlight/internal/conf"
	"github.com/tphakala/plasma-spotlight/internal/logger"
	"github.com/tphakala/plasma-spotlight/internal/systemd"
)

// Command returns the timer command and its subcommands.
func Command(_ *conf.Context) *cobra.Command {
	return newCommand(func() *systemd.Timer {
		return systemd.NewTimer(nil, logger.Global().Module("systemd"))
	})
}

func newCommand(newTimer func() *systemd.Timer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Manage the systemd user timer for daily runs",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Enable and start " + systemd.TimerName,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return newTimer().Enable(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop and disable " + systemd.TimerName,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return newTimer().Disable(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether " + systemd.TimerName + " is enabled and active",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), newTimer().Status(cmd.Context()))
				return err
			},
		},
	)
	return cmd
}
