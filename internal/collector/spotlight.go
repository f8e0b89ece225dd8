package collector

import (
	"context"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/antonholmquist/jason"

	"github.com/tphakala/plasma-spotlight/internal/logger"
	"github.com/tphakala/plasma-spotlight/internal/naming"
	"github.com/tphakala/plasma-spotlight/internal/sidecar"
)

// SpotlightAPI is the selection endpoint serving Windows Spotlight imagery.
const SpotlightAPI = "https://fd.api.iris.microsoft.com/v4/api/selection"

const (
	spotlightPlacement = "88000820"
	spotlightUserAgent = "Mozilla/5.0"
)

// Extra Spotlight sidecar keys.
const (
	KeyLocationSubject     = "location_subject"
	KeyDescription         = "description"
	KeyInteractiveHotspots = "interactive_hotspots"
)

// Defaults written when an ad omits a field.
const (
	noTitle       = "No Title"
	noDescription = "No Description"
	noCopyright   = "No Copyright"
)

// SpotlightConfig selects what the Spotlight collector fetches.
type SpotlightConfig struct {
	BatchCount int
	Country    string
	Locale     string
	Dir        string
	Endpoint   string // defaults to SpotlightAPI
}

// SpotlightCollector fetches one batch from the Spotlight selection API.
type SpotlightCollector struct {
	cfg  SpotlightConfig
	deps Deps
}

// NewSpotlightCollector returns a collector for one batch per run.
func NewSpotlightCollector(cfg SpotlightConfig, deps Deps) *SpotlightCollector {
	if cfg.Endpoint == "" {
		cfg.Endpoint = SpotlightAPI
	}
	if cfg.BatchCount < 1 {
		cfg.BatchCount = 1
	}
	deps.withDefaults(FeedSpotlight)
	return &SpotlightCollector{cfg: cfg, deps: deps}
}

func (s *SpotlightCollector) Name() string { return FeedSpotlight }

// SelectionURL is the query issued for one batch.
func (s *SpotlightCollector) SelectionURL() string {
	q := url.Values{}
	q.Set("placement", spotlightPlacement)
	q.Set("bcnt", strconv.Itoa(s.cfg.BatchCount))
	q.Set("country", s.cfg.Country)
	q.Set("locale", s.cfg.Locale)
	q.Set("fmt", "json")
	return s.cfg.Endpoint + "?" + q.Encode()
}

// Collect requests one batch and stores every item not already on disk.
func (s *SpotlightCollector) Collect(ctx context.Context) *Result {
	log := s.deps.Logger.WithContext(ctx)
	res := newResult(FeedSpotlight, s.cfg.Dir)

	log.Info("Requesting Spotlight images", logger.Int("batch", s.cfg.BatchCount))
	obj, err := s.deps.Fetcher.FetchJSON(ctx, s.SelectionURL(), map[string]string{"User-Agent": spotlightUserAgent})
	switch {
	case isHardFailure(err):
		log.Error("Spotlight API request failed", logger.Error(err))
		res.Failed = true
		res.Err = err
		return res
	case err != nil:
		log.Warn("Spotlight API returned unusable data", logger.Error(err))
		return res
	case obj == nil:
		log.Warn("No data received from Spotlight API")
		return res
	}

	items, err := obj.GetObjectArray("batchrsp", "items")
	if err != nil {
		log.Warn("Spotlight response has no items", logger.Error(err))
		return res
	}
	log.Info("Found items in Spotlight rotation", logger.Int("items", len(items)))

	for _, wrapper := range items {
		if ctx.Err() != nil {
			break
		}
		s.collectItem(ctx, log, res, wrapper)
	}

	if len(res.Paths) == 0 {
		log.Info("No new Spotlight images to download", logger.String("outcomes", res.Summary()))
	} else {
		log.Info("Spotlight collection finished",
			logger.Int("new_images", len(res.Paths)),
			logger.String("outcomes", res.Summary()))
	}
	return res
}

// collectItem handles one batch entry. The useful record is a JSON document
// embedded as a string in the "item" field.
func (s *SpotlightCollector) collectItem(ctx context.Context, log logger.Logger, res *Result, wrapper *jason.Object) {
	raw := optString(wrapper, "item")
	if raw == "" {
		res.count(OutcomeMalformed)
		return
	}
	item, err := jason.NewObjectFromBytes([]byte(raw))
	if err != nil {
		log.Warn("Failed to parse Spotlight item", logger.Error(err))
		res.count(OutcomeMalformed)
		return
	}
	ad, err := item.GetObject("ad")
	if err != nil {
		log.Warn("Spotlight item has no ad record")
		res.count(OutcomeMalformed)
		return
	}
	assetURL := optString(ad, "landscapeImage", "asset")
	if assetURL == "" {
		log.Warn("No landscape image found in item")
		res.count(OutcomeMalformed)
		return
	}

	title := optString(ad, "title")
	named := naming.SpotlightName(naming.SpotlightCandidate{
		AssetURL: assetURL,
		CTAURI:   optString(ad, "ctaUri"),
		Title:    title,
	})
	ilog := log.With(logger.String("file_name", named.Name), logger.String("naming_level", named.Level.String()))
	if named.UnknownSource != "" {
		ilog.Info("New image source detected", logger.String("source", named.UnknownSource))
	}

	path := filepath.Join(s.cfg.Dir, named.Name)
	if !s.deps.Gate.IsNew(path) {
		ilog.Info("Image already exists")
		res.count(OutcomeExists)
		return
	}

	meta := sidecar.New("Spotlight").
		Set(sidecar.KeyTitle, orDefault(title, noTitle)).
		Set(sidecar.KeyCopyright, orDefault(optString(ad, "copyright"), noCopyright)).
		Set(sidecar.KeyURL, assetURL).
		Set(KeyLocationSubject, optString(ad, "iconHoverText")).
		Set(KeyDescription, orDefault(optString(ad, "description"), noDescription)).
		Set(KeyInteractiveHotspots, strings.Join(hotspotLabels(ad), ", "))
	s.deps.store(ctx, ilog, res, assetURL, path, meta)
}

func hotspotLabels(ad *jason.Object) []string {
	hotspots, err := ad.GetObjectArray("relatedHotspots")
	if err != nil {
		return nil
	}
	labels := make([]string, 0, len(hotspots))
	for _, h := range hotspots {
		if label := optString(h, "label"); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
