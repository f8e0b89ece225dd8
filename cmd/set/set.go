// Package set implements the set command.
package set

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tphakala/plasma-spotlight/internal/conf"
	"github.com/tphakala/plasma-spotlight/internal/cycle"
	"github.com/tphakala/plasma-spotlight/internal/logger"
)

// Setter applies an image outside the daily schedule.
type Setter interface {
	SetWallpaper(ctx context.Context, imagePath string) error
}

// Command returns the set command.
func Command(ctx *conf.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set IMAGE",
		Short: "Apply an image now without affecting the daily schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, client, err := cycle.NewFromSettings(ctx.Settings, logger.Global().Module("cycle"))
			if err != nil {
				return err
			}
			defer client.Close()
			return Apply(cmd.Context(), cmd.OutOrStdout(), svc, args[0])
		},
	}
}

// Apply sets imagePath through s and confirms on w.
func Apply(ctx context.Context, w io.Writer, s Setter, imagePath string) error {
	if err := s.SetWallpaper(ctx, imagePath); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Wallpaper set to %s\n", imagePath)
	return err
}
