// Package collector drives one image feed end to end: query, normalize,
// name, dedupe, download and write metadata.
package collector

import (
	"context"
	"time"

	"github.com/antonholmquist/jason"

	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/logger"
	"github.com/tphakala/plasma-spotlight/internal/sidecar"
)

// Feed names.
const (
	FeedBing      = "bing"
	FeedSpotlight = "spotlight"
)

// sidecarDateLayout is the fetch timestamp written into sidecars, local time.
const sidecarDateLayout = "2006-01-02 15:04:05"

// Fetcher is the HTTP surface the collectors need.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, headers map[string]string) (*jason.Object, error)
	ProbeExists(ctx context.Context, url string) bool
	DownloadFile(ctx context.Context, url, destPath string) (int64, error)
}

// Gate reports whether a canonical path has not been fetched yet.
type Gate interface {
	IsNew(path string) bool
}

// SpaceChecker reports whether dir has room for another image.
type SpaceChecker interface {
	HasSpace(dir string) (bool, error)
}

// Collector runs one feed.
type Collector interface {
	Name() string
	Collect(ctx context.Context) *Result
}

// Deps are the collaborators shared by both collectors.
type Deps struct {
	Fetcher Fetcher
	Gate    Gate
	Space   SpaceChecker     // optional
	Logger  logger.Logger    // optional
	Now     func() time.Time // optional, defaults to time.Now
}

func (d *Deps) withDefaults(module string) {
	if d.Logger == nil {
		d.Logger = logger.Global().Module("collector")
	}
	d.Logger = d.Logger.Module(module)
	if d.Now == nil {
		d.Now = time.Now
	}
}

// store downloads one new image and writes its sidecar. It returns false when
// the item was skipped; the reason is counted on res.
func (d *Deps) store(ctx context.Context, log logger.Logger, res *Result, imageURL, path string, meta *sidecar.Metadata) bool {
	if d.Space != nil {
		ok, err := d.Space.HasSpace(res.Dir)
		switch {
		case err != nil:
			log.Warn("Free space check failed, continuing", logger.Error(err))
		case !ok:
			log.Warn("Not enough free space, skipping image", logger.String("file", path))
			res.count(OutcomeInsufficientSpace)
			return false
		}
	}

	start := time.Now()
	written, err := d.Fetcher.DownloadFile(ctx, imageURL, path)
	if err != nil {
		log.Error("Download failed, skipping image",
			logger.String("file", path),
			logger.Error(err))
		res.count(OutcomeDownloadFailed)
		return false
	}
	log.Info("Downloaded image",
		logger.String("file", path),
		logger.Int64("bytes", written),
		logger.Duration("elapsed", time.Since(start)))

	meta.Set(sidecar.KeyDate, d.Now().Format(sidecarDateLayout))
	if sidecarPath, err := sidecar.Write(meta, path); err != nil {
		// The image is already committed; a missing sidecar does not undo it.
		log.Warn("Failed to write metadata sidecar", logger.String("file", path), logger.Error(err))
		res.count(OutcomeSidecarFailed)
	} else {
		log.Debug("Wrote metadata sidecar", logger.String("sidecar", sidecarPath))
	}

	res.Paths = append(res.Paths, path)
	res.count(OutcomeDownloaded)
	return true
}

// isHardFailure separates "the request itself failed" from "no usable data".
func isHardFailure(err error) bool {
	return err != nil && !errors.IsCategory(err, errors.CategoryFeedParse)
}

// optString returns the string at keys or "".
func optString(obj *jason.Object, keys ...string) string {
	s, err := obj.GetString(keys...)
	if err != nil {
		return ""
	}
	return s
}
