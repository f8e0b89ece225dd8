// Package metrics defines the Prometheus collectors recorded for each download cycle.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "plasma_spotlight"

// CycleMetrics holds the per-run collectors.
type CycleMetrics struct {
	ImagesDownloaded *prometheus.CounterVec
	ItemsSkipped     *prometheus.CounterVec
	FeedFailed       *prometheus.GaugeVec
	CycleDuration    prometheus.Gauge
	LastSuccess      prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
	registry         *prometheus.Registry
}

// NewCycleMetrics creates the collectors and registers them on registry.
func NewCycleMetrics(registry *prometheus.Registry) (*CycleMetrics, error) {
	m := &CycleMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register cycle metrics: %w", err)
	}
	return m, nil
}

func (m *CycleMetrics) initMetrics() {
	m.ImagesDownloaded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_downloaded_total",
		Help:      "Images stored during the run, by feed.",
	}, []string{"feed"})

	m.ItemsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_skipped_total",
		Help:      "Feed items not stored during the run, by feed and reason.",
	}, []string{"feed", "reason"})

	m.FeedFailed = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_failed",
		Help:      "1 when every query of the feed failed in the run.",
	}, []string{"feed"})

	m.CycleDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Wall-clock duration of the run.",
	})

	m.LastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last run that applied a wallpaper.",
	})

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Outgoing HTTP requests, by host, method and status code or \"error\".",
	}, []string{"host", "method", "code"})
}

// RecordDownloaded adds n stored images for feed.
func (m *CycleMetrics) RecordDownloaded(feed string, n int) {
	m.ImagesDownloaded.WithLabelValues(feed).Add(float64(n))
}

// RecordSkipped adds n skipped items for feed with reason.
func (m *CycleMetrics) RecordSkipped(feed, reason string, n int) {
	m.ItemsSkipped.WithLabelValues(feed, reason).Add(float64(n))
}

// SetFeedFailed records whether feed failed outright.
func (m *CycleMetrics) SetFeedFailed(feed string, failed bool) {
	v := 0.0
	if failed {
		v = 1
	}
	m.FeedFailed.WithLabelValues(feed).Set(v)
}

// ObserveDuration records how long the run took.
func (m *CycleMetrics) ObserveDuration(d time.Duration) {
	m.CycleDuration.Set(d.Seconds())
}

// MarkSuccess stamps the last successful apply.
func (m *CycleMetrics) MarkSuccess(t time.Time) {
	m.LastSuccess.Set(float64(t.Unix()))
}

// RecordHTTPRequest counts one outgoing request.
func (m *CycleMetrics) RecordHTTPRequest(host, method, code string) {
	m.HTTPRequests.WithLabelValues(host, method, code).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *CycleMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ImagesDownloaded.Describe(ch)
	m.ItemsSkipped.Describe(ch)
	m.FeedFailed.Describe(ch)
	m.CycleDuration.Describe(ch)
	m.LastSuccess.Describe(ch)
	m.HTTPRequests.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *CycleMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ImagesDownloaded.Collect(ch)
	m.ItemsSkipped.Collect(ch)
	m.FeedFailed.Collect(ch)
	m.CycleDuration.Collect(ch)
	m.LastSuccess.Collect(ch)
	m.HTTPRequests.Collect(ch)
}
