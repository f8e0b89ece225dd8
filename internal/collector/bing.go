package collector

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/tphakala/plasma-spotlight/internal/dedupe"
	"github.com/tphakala/plasma-spotlight/internal/logger"
	"github.com/tphakala/plasma-spotlight/internal/naming"
	"github.com/tphakala/plasma-spotlight/internal/sidecar"
)

// BingHost is the origin for both the archive API and image URLs.
const BingHost = "https://www.bing.com"

const bingArchivePath = "/HPImageArchive.aspx?format=js&idx=0&n=8&mkt=%s"

// Extra Bing sidecar keys.
const (
	KeyRegion        = "region"
	KeyStartDate     = "start_date"
	KeyCopyrightLink = "copyright_link"
)

// BingConfig selects what the Bing collector fetches.
type BingConfig struct {
	Regions    []string
	Resolution string
	Dir        string
	Host       string // defaults to BingHost
}

// BingCollector fetches the daily archive for each configured market.
type BingCollector struct {
	cfg  BingConfig
	deps Deps
}

// NewBingCollector returns a collector for the given markets.
func NewBingCollector(cfg BingConfig, deps Deps) *BingCollector {
	if cfg.Host == "" {
		cfg.Host = BingHost
	}
	if cfg.Resolution == "" {
		cfg.Resolution = "UHD"
	}
	deps.withDefaults(FeedBing)
	return &BingCollector{cfg: cfg, deps: deps}
}

func (b *BingCollector) Name() string { return FeedBing }

// ArchiveURL is the archive query for one market.
func (b *BingCollector) ArchiveURL(region string) string {
	return b.cfg.Host + fmt.Sprintf(bingArchivePath, url.QueryEscape(region))
}

// Collect queries every market in order. The same image id surfaced by two
// markets is fetched once per run.
func (b *BingCollector) Collect(ctx context.Context) *Result {
	log := b.deps.Logger.WithContext(ctx)
	res := newResult(FeedBing, b.cfg.Dir)
	seen := dedupe.NewSeenSet()

	attempted, failed := 0, 0
	for _, region := range b.cfg.Regions {
		if ctx.Err() != nil {
			res.Err = ctx.Err()
			failed += len(b.cfg.Regions) - attempted
			attempted = len(b.cfg.Regions)
			break
		}
		attempted++
		rlog := log.With(logger.String("region", region))

		obj, err := b.deps.Fetcher.FetchJSON(ctx, b.ArchiveURL(region), nil)
		if isHardFailure(err) {
			rlog.Warn("Bing archive request failed", logger.Error(err))
			res.Err = err
			failed++
			continue
		}
		if err != nil {
			rlog.Warn("Bing archive returned unusable data", logger.Error(err))
			continue
		}
		if obj == nil {
			rlog.Info("No data received from Bing")
			continue
		}

		images, err := obj.GetObjectArray("images")
		if err != nil {
			rlog.Warn("Bing archive has no images list", logger.Error(err))
			res.count(OutcomeMalformed)
			continue
		}
		rlog.Debug("Bing archive fetched", logger.Int("images", len(images)))

		for _, img := range images {
			if ctx.Err() != nil {
				break
			}
			urlbase := optString(img, "urlbase")
			baseID := naming.BingBaseID(urlbase)
			if baseID == "" {
				rlog.Warn("Skipping Bing image without urlbase")
				res.count(OutcomeMalformed)
				continue
			}
			ilog := rlog.With(logger.String("image_id", baseID))

			if !seen.Add(baseID) {
				ilog.Debug("Image already handled for another region")
				res.count(OutcomeDuplicate)
				continue
			}

			path := filepath.Join(b.cfg.Dir, naming.BingName(baseID, b.cfg.Resolution))
			if !b.deps.Gate.IsNew(path) {
				ilog.Info("Image already exists", logger.String("file", path))
				res.count(OutcomeExists)
				continue
			}

			imageURL := b.cfg.Host + urlbase + "_" + b.cfg.Resolution + ".jpg"
			if !b.deps.Fetcher.ProbeExists(ctx, imageURL) {
				ilog.Info("Resolution not available for image", logger.String("resolution", b.cfg.Resolution))
				res.count(OutcomeResolutionUnavailable)
				continue
			}

			meta := sidecar.New("Bing").
				Set(sidecar.KeyTitle, optString(img, "title")).
				Set(sidecar.KeyCopyright, optString(img, "copyright")).
				Set(sidecar.KeyURL, imageURL).
				Set(KeyRegion, region).
				Set(KeyStartDate, optString(img, "startdate")).
				Set(KeyCopyrightLink, optString(img, "copyrightlink"))
			b.deps.store(ctx, ilog, res, imageURL, path, meta)
		}
	}

	if attempted > 0 && failed == attempted {
		res.Failed = true
	}
	log.Info("Bing collection finished",
		logger.String("status", res.Status().String()),
		logger.Int("new_images", len(res.Paths)),
		logger.String("outcomes", res.Summary()))
	return res
}
