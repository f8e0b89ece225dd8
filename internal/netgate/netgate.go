// Package netgate waits for name resolution to work before the first feed query.
package netgate

import (
	"context"
	"net"
	"time"

	"github.com/tphakala/plasma-spotlight/internal/logger"
)

const (
	DefaultProbeHost    = "www.bing.com"
	DefaultMaxWait      = 30 * time.Second
	DefaultPollInterval = 2 * time.Second
)

// Resolver is satisfied by *net.Resolver.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Config bounds the wait.
type Config struct {
	Host         string
	MaxWait      time.Duration
	PollInterval time.Duration
}

// Gate probes DNS for a fixed host until it resolves or the budget runs out.
type Gate struct {
	cfg      Config
	resolver Resolver
	log      logger.Logger
}

// New returns a Gate. A nil resolver uses net.DefaultResolver.
func New(cfg Config, resolver Resolver, log logger.Logger) *Gate {
	if cfg.Host == "" {
		cfg.Host = DefaultProbeHost
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if log == nil {
		log = logger.Global().Module("netgate")
	}
	return &Gate{cfg: cfg, resolver: resolver, log: log}
}

// Wait blocks until the probe host resolves, MaxWait elapses or ctx is done.
// It reports whether the network looked ready. A false result is advisory:
// callers proceed and let each request fail on its own.
func (g *Gate) Wait(ctx context.Context) bool {
	start := time.Now()
	end := start.Add(g.cfg.MaxWait)
	deadline := time.NewTimer(g.cfg.MaxWait)
	defer deadline.Stop()

	attempts := 0
	for {
		attempts++
		if g.probe(ctx, end) {
			if attempts > 1 {
				g.log.Info("Network ready",
					logger.Int("attempts", attempts),
					logger.Duration("waited", time.Since(start)))
			}
			return true
		}
		g.log.Debug("Waiting for network", logger.String("host", g.cfg.Host), logger.Int("attempt", attempts))

		poll := time.NewTimer(g.cfg.PollInterval)
		select {
		case <-ctx.Done():
			poll.Stop()
			g.log.Warn("Network wait interrupted", logger.Error(ctx.Err()))
			return false
		case <-deadline.C:
			poll.Stop()
			g.log.Warn("Network not ready, continuing anyway",
				logger.String("host", g.cfg.Host),
				logger.Duration("max_wait", g.cfg.MaxWait))
			return false
		case <-poll.C:
		}
	}
}

// probe resolves the host once, bounded by the poll interval and by end.
func (g *Gate) probe(ctx context.Context, end time.Time) bool {
	timeout := min(g.cfg.PollInterval, time.Until(end))
	if timeout <= 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	addrs, err := g.resolver.LookupHost(ctx, g.cfg.Host)
	return err == nil && len(addrs) > 0
}
