// Package desktop applies a downloaded image to the KDE Plasma lock screen and
// the login-manager background cache.
package desktop

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/tphakala/plasma-spotlight/internal/command"
	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/logger"
)

// CacheFileName is the world-readable copy the SDDM theme and lock screen read.
const CacheFileName = "current.jpg"

const kwriteconfig = "kwriteconfig6"

// ErrImageNotFound is returned when the image to apply does not exist.
var ErrImageNotFound = errors.NewStd("image not found")

// Targets selects which surfaces Apply updates.
type Targets struct {
	Lockscreen bool
	SDDM       bool
}

// Any reports whether there is anything to apply.
func (t Targets) Any() bool { return t.Lockscreen || t.SDDM }

// Applier puts an image on the desktop.
type Applier interface {
	Apply(ctx context.Context, imagePath string, targets Targets) error
}

// KDEApplier refreshes the background cache copy and points kscreenlocker at it.
type KDEApplier struct {
	cacheDir string
	runner   command.Runner
	log      logger.Logger
}

// NewKDEApplier returns an applier writing into cacheDir. A nil runner runs real commands.
func NewKDEApplier(cacheDir string, runner command.Runner, log logger.Logger) *KDEApplier {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	if log == nil {
		log = logger.Global().Module("desktop")
	}
	return &KDEApplier{cacheDir: cacheDir, runner: runner, log: log}
}

// CachePath is where the current wallpaper copy lives.
func (k *KDEApplier) CachePath() string {
	return filepath.Join(k.cacheDir, CacheFileName)
}

// Apply copies imagePath into the cache and, when requested, updates the lock
// screen configuration. Nothing is done when targets is empty.
func (k *KDEApplier) Apply(ctx context.Context, imagePath string, targets Targets) error {
	if !targets.Any() {
		k.log.Debug("No desktop targets enabled")
		return nil
	}
	info, err := os.Stat(imagePath)
	if err != nil || info.IsDir() {
		return errors.New(ErrImageNotFound).
			Component("desktop").
			Category(errors.CategoryNotFound).
			FileContext(imagePath).
			Build()
	}

	if err := k.updateCache(imagePath); err != nil {
		return err
	}
	k.log.Info("Updated background cache", logger.String("image", imagePath), logger.String("cache", k.CachePath()))

	if targets.Lockscreen {
		if err := k.updateLockscreen(ctx); err != nil {
			return err
		}
		k.log.Info("Updated lock screen wallpaper", logger.String("image", imagePath))
	}
	return nil
}

// updateCache replaces the cache copy atomically and leaves it world-readable.
func (k *KDEApplier) updateCache(imagePath string) error {
	if info, err := os.Stat(k.cacheDir); err != nil || !info.IsDir() {
		return applyError(errors.NewStd("cache directory not found, run the installer to create it"), k.cacheDir, "check_cache_dir")
	}
	if err := unix.Access(k.cacheDir, unix.W_OK); err != nil {
		return applyError(err, k.cacheDir, "check_cache_dir")
	}

	src, err := os.Open(imagePath)
	if err != nil {
		return applyError(err, imagePath, "open_image")
	}
	defer src.Close()

	tmp, err := os.CreateTemp(k.cacheDir, ".current.*.tmp")
	if err != nil {
		return applyError(err, k.cacheDir, "create_temp")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return applyError(err, tmpName, "copy_image")
	}
	if err := tmp.Close(); err != nil {
		return applyError(err, tmpName, "close_temp")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return applyError(err, tmpName, "chmod")
	}
	if err := os.Rename(tmpName, k.CachePath()); err != nil {
		return applyError(err, k.CachePath(), "rename")
	}
	committed = true
	return nil
}

func (k *KDEApplier) updateLockscreen(ctx context.Context) error {
	uri := (&url.URL{Scheme: "file", Path: k.CachePath()}).String()
	args := []string{
		"--file", "kscreenlockerrc",
		"--group", "Greeter",
		"--group", "Wallpaper",
		"--group", "org.kde.image",
		"--group", "General",
		"--key", "Image",
		uri,
	}
	if _, err := k.runner.Run(ctx, kwriteconfig, args...); err != nil {
		return errors.New(err).
			Component("desktop").
			Category(errors.CategoryDesktopApply).
			Context("operation", "update_lockscreen").
			Build()
	}
	return nil
}

func applyError(err error, path, op string) error {
	return errors.New(err).
		Component("desktop").
		Category(errors.CategoryDesktopApply).
		FileContext(path).
		Context("operation", op).
		Build()
}
