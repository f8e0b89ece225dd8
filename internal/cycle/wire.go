package cycle

import (
	"net/http"
	"strconv"

	"github.com/tphakala/plasma-spotlight/internal/collector"
	"github.com/tphakala/plasma-spotlight/internal/conf"
	"github.com/tphakala/plasma-spotlight/internal/dedupe"
	"github.com/tphakala/plasma-spotlight/internal/desktop"
	"github.com/tphakala/plasma-spotlight/internal/diskmanager"
	"github.com/tphakala/plasma-spotlight/internal/httpclient"
	"github.com/tphakala/plasma-spotlight/internal/logger"
	"github.com/tphakala/plasma-spotlight/internal/netgate"
	"github.com/tphakala/plasma-spotlight/internal/notification"
	"github.com/tphakala/plasma-spotlight/internal/observability"
	"github.com/tphakala/plasma-spotlight/internal/schedule"
)

// NewFromSettings wires the production collaborators described by cfg.
// The returned client should be closed when the service is done.
func NewFromSettings(cfg *conf.Settings, log logger.Logger) (*Service, *httpclient.Client, error) {
	if log == nil {
		log = logger.Global().Module("cycle")
	}

	client := httpclient.New(&httpclient.Config{
		DefaultTimeout:    cfg.HTTP.Timeout,
		DownloadTimeout:   cfg.HTTP.DownloadTimeout,
		UserAgent:         cfg.HTTP.UserAgent,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
	})

	collectorDeps := collector.Deps{
		Fetcher: client,
		Gate:    dedupe.NewGate(),
		Space:   diskmanager.NewFreeSpaceChecker(cfg.Disk.MinFreeMB, log.Module("diskmanager")),
		Logger:  log.Module("collector"),
	}

	var collectors []collector.Collector
	if cfg.FeedEnabled(conf.SourceBing) {
		collectors = append(collectors, collector.NewBingCollector(collector.BingConfig{
			Regions:    cfg.Bing.Regions,
			Resolution: cfg.Resolution,
			Dir:        cfg.Paths.Bing,
		}, collectorDeps))
	} else {
		log.Info("Skipping Bing, source not selected")
	}
	if cfg.FeedEnabled(conf.SourceSpotlight) {
		collectors = append(collectors, collector.NewSpotlightCollector(collector.SpotlightConfig{
			BatchCount: cfg.Spotlight.BatchCount,
			Country:    cfg.Spotlight.Country,
			Locale:     cfg.Spotlight.Locale,
			Dir:        cfg.Paths.Spotlight,
		}, collectorDeps))
	} else {
		log.Info("Skipping Spotlight, source not selected")
	}

	deps := Deps{
		Collectors: collectors,
		Scheduler: schedule.New(schedule.NewFileStore(cfg.MarkerPath()),
			schedule.WithLogger(log.Module("schedule"))),
		Applier: desktop.NewKDEApplier(cfg.Paths.CacheDir, nil, log.Module("desktop")),
		Gate: netgate.New(netgate.Config{
			Host:         cfg.Network.ProbeHost,
			MaxWait:      cfg.Network.MaxWait,
			PollInterval: cfg.Network.PollInterval,
		}, nil, log.Module("netgate")),
		Logger: log,
	}

	notifier, err := notification.New(notification.Config{
		URLs:      cfg.Notification.URLs,
		OnSuccess: cfg.Notification.OnSuccess,
		OnFailure: cfg.Notification.OnFailure,
		Timeout:   cfg.Notification.Timeout,
	}, log.Module("notification"))
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	if notifier != nil {
		deps.Notifier = notifier
	}

	if cfg.Metrics.Textfile != "" {
		m, err := observability.NewMetrics()
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		deps.Metrics = m
		client.SetAfterResponseHook(requestCounter(m))
	}

	settings := Settings{
		PreferredSource: cfg.PreferredSource,
		FailurePolicy:   cfg.FailurePolicy,
		Targets:         desktop.Targets{Lockscreen: cfg.UpdateLockscreen, SDDM: cfg.UpdateSDDM},
		MetricsTextfile: cfg.Metrics.Textfile,
	}
	return NewService(settings, deps), client, nil
}

// requestCounter returns a client hook that counts requests by outcome.
func requestCounter(m *observability.Metrics) func(*http.Request, *http.Response, error) {
	return func(req *http.Request, resp *http.Response, err error) {
		code := "error"
		if err == nil && resp != nil {
			code = strconv.Itoa(resp.StatusCode)
		}
		m.Cycle.RecordHTTPRequest(req.URL.Hostname(), req.Method, code)
	}
}
