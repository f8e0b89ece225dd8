package cycle

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plasma-spotlight/internal/collector"
	"github.com/tphakala/plasma-spotlight/internal/conf"
	"github.com/tphakala/plasma-spotlight/internal/dedupe"
	"github.com/tphakala/plasma-spotlight/internal/desktop"
	"github.com/tphakala/plasma-spotlight/internal/httpclient"
	"github.com/tphakala/plasma-spotlight/internal/logger"
	"github.com/tphakala/plasma-spotlight/internal/observability"
	"github.com/tphakala/plasma-spotlight/internal/schedule"
)

var jpegBody = string([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}) + "pixels"

const assetHost = "https://img-prod-cms-rt-microsoft-com.akamaized.net/cms/api/am/imageFileData/"

type nopRunner struct{ calls int }

func (r *nopRunner) Run(context.Context, string, ...string) ([]byte, error) {
	r.calls++
	return nil, nil
}

type e2e struct {
	root     string
	store    *schedule.MemoryStore
	runner   *nopRunner
	now      time.Time
	bingDir  string
	spotDir  string
	cacheDir string
	metrics  *observability.Metrics
}

func newE2E(t *testing.T) *e2e {
	t.Helper()
	root := t.TempDir()
	e := &e2e{
		root:     root,
		store:    &schedule.MemoryStore{},
		runner:   &nopRunner{},
		now:      time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC),
		bingDir:  filepath.Join(root, "Bing"),
		spotDir:  filepath.Join(root, "Spotlight"),
		cacheDir: filepath.Join(root, "cache"),
	}
	require.NoError(t, os.MkdirAll(e.cacheDir, 0o755))
	m, err := observability.NewMetrics()
	require.NoError(t, err)
	e.metrics = m
	return e
}

func (e *e2e) service(t *testing.T, sources string, batch int) *Service {
	t.Helper()
	client := httpclient.New(&httpclient.Config{DefaultTimeout: 5 * time.Second})
	httpmock.ActivateNonDefault(client.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	log := logger.NewNopLogger()
	deps := collector.Deps{Fetcher: client, Gate: dedupe.NewGate(), Logger: log}
	var collectors []collector.Collector
	if sources != conf.SourceSpotlight {
		collectors = append(collectors, collector.NewBingCollector(collector.BingConfig{
			Regions: []string{"en-US"}, Resolution: conf.ResolutionUHD, Dir: e.bingDir,
		}, deps))
	}
	if sources != conf.SourceBing {
		collectors = append(collectors, collector.NewSpotlightCollector(collector.SpotlightConfig{
			BatchCount: batch, Country: "US", Locale: "en-US", Dir: e.spotDir,
		}, deps))
	}

	sched := schedule.New(e.store,
		schedule.WithClock(func() time.Time { return e.now }),
		schedule.WithLogger(log))
	return NewService(Settings{
		PreferredSource: conf.SourceSpotlight,
		FailurePolicy:   conf.FailurePolicyAny,
		Targets:         desktop.Targets{Lockscreen: true, SDDM: true},
		MetricsTextfile: filepath.Join(e.root, "metrics", "plasma_spotlight.prom"),
	}, Deps{
		Collectors: collectors,
		Scheduler:  sched,
		Applier:    desktop.NewKDEApplier(e.cacheDir, e.runner, log),
		Metrics:    e.metrics,
		Logger:     log,
	})
}

func spotlightBatch(t *testing.T, assets ...string) string {
	t.Helper()
	items := make([]map[string]string, 0, len(assets))
	for _, a := range assets {
		inner, err := json.Marshal(map[string]any{"ad": map[string]any{
			"landscapeImage": map[string]any{"asset": a},
			"title":          "Title of " + filepath.Base(a),
		}})
		require.NoError(t, err)
		items = append(items, map[string]string{"item": string(inner)})
	}
	out, err := json.Marshal(map[string]any{"batchrsp": map[string]any{"items": items}})
	require.NoError(t, err)
	return string(out)
}

func registerSpotlight(t *testing.T, assets ...string) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodGet, "=~^"+collector.SpotlightAPI,
		httpmock.NewStringResponder(http.StatusOK, spotlightBatch(t, assets...)))
	for _, a := range assets {
		httpmock.RegisterResponder(http.MethodGet, a, httpmock.NewStringResponder(http.StatusOK, jpegBody))
	}
}

func TestEndToEndSpotlightBatchOfTwo(t *testing.T) {
	e := newE2E(t)
	svc := e.service(t, conf.SourceSpotlight, 2)

	first := assetHost + "AA1_desktop-a_ds_FirstPlace_gettyimages-1_3840x2160.jpg"
	second := assetHost + "AA2_desktop-b_ds_SecondPlace_gettyimages-2_3840x2160.jpg"
	registerSpotlight(t, first, second)

	report, err := svc.RunDownloadCycle(t.Context(), Options{})
	require.NoError(t, err)

	wantFirst := filepath.Join(e.spotDir, "FirstPlace_3840x2160.jpg")
	assert.Equal(t, []string{wantFirst, filepath.Join(e.spotDir, "SecondPlace_3840x2160.jpg")}, report.Spotlight().Paths)
	assert.Equal(t, wantFirst, report.Selected)
	assert.True(t, report.Applied)
	assert.Nil(t, report.Bing())

	marker, err := e.store.Read()
	require.NoError(t, err)
	assert.True(t, marker.Equal(e.now))

	cached, err := os.ReadFile(filepath.Join(e.cacheDir, desktop.CacheFileName))
	require.NoError(t, err)
	assert.Equal(t, jpegBody, string(cached))
	assert.Equal(t, 1, e.runner.calls)

	prom, err := os.ReadFile(filepath.Join(e.root, "metrics", "plasma_spotlight.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `plasma_spotlight_images_downloaded_total{feed="spotlight"} 2`)
	assert.Contains(t, string(prom), "plasma_spotlight_last_success_timestamp_seconds")

	// Same day, same feed: the gate stops the second run before any request.
	calls := httpmock.GetTotalCallCount()
	report, err = svc.RunDownloadCycle(t.Context(), Options{})
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, calls, httpmock.GetTotalCallCount())

	// Forced: everything already exists, nothing new, nothing applied again.
	report, err = svc.RunDownloadCycle(t.Context(), Options{Force: true})
	require.NoError(t, err)
	assert.Empty(t, report.Selected)
	assert.Equal(t, 2, report.Spotlight().Outcomes[collector.OutcomeExists])
	assert.Equal(t, 1, e.runner.calls)
}

func TestEndToEndBingHardFailureFailsRun(t *testing.T) {
	e := newE2E(t)
	svc := e.service(t, conf.SourceBoth, 1)

	httpmock.RegisterResponder(http.MethodGet, "=~^"+collector.BingHost+"/HPImageArchive",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))
	asset := assetHost + "AA1_desktop-a_ds_OnlyPlace_gettyimages-1_3840x2160.jpg"
	registerSpotlight(t, asset)

	report, err := svc.RunDownloadCycle(t.Context(), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFeedsFailed)
	assert.Equal(t, collector.StatusFailed, report.Bing().Status())
	assert.Equal(t, collector.StatusOK, report.Spotlight().Status())
	assert.False(t, report.Applied)
	assert.Zero(t, e.runner.calls)

	_, markErr := e.store.Read()
	assert.ErrorIs(t, markErr, schedule.ErrNoMarker)
}

func TestEndToEndBingZeroResultsStillApplies(t *testing.T) {
	e := newE2E(t)
	svc := e.service(t, conf.SourceBoth, 1)

	httpmock.RegisterResponder(http.MethodGet, "=~^"+collector.BingHost+"/HPImageArchive",
		httpmock.NewStringResponder(http.StatusOK, `{"images":[]}`))
	asset := assetHost + "AA1_desktop-a_ds_OnlyPlace_gettyimages-1_3840x2160.jpg"
	registerSpotlight(t, asset)

	report, err := svc.RunDownloadCycle(t.Context(), Options{})
	require.NoError(t, err)
	assert.Equal(t, collector.StatusZeroNew, report.Bing().Status())
	assert.Equal(t, filepath.Join(e.spotDir, "OnlyPlace_3840x2160.jpg"), report.Selected)
	assert.True(t, report.Applied)
}
