// Package observability exports run metrics for node_exporter's textfile collector.
package observability

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/observability/metrics"
)

// Metrics holds the registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry
	Cycle    *metrics.CycleMetrics
}

// NewMetrics creates a private registry with the cycle collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	cycle, err := metrics.NewCycleMetrics(registry)
	if err != nil {
		return nil, errors.New(err).
			Component("observability").
			Category(errors.CategoryGeneric).
			Build()
	}
	return &Metrics{registry: registry, Cycle: cycle}, nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every registered metric to path in the text exposition
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return textfileError(err, path)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return textfileError(err, path)
	}
	return nil
}

func textfileError(err error, path string) error {
	return errors.New(err).
		Component("observability").
		Category(errors.CategoryFileIO).
		FileContext(path).
		Context("operation", "write_textfile").
		Build()
}
