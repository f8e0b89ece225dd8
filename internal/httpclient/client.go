// Package httpclient provides the HTTP client shared by the feed collectors:
// per-request timeouts, a User-Agent, polite request pacing, and hooks for
// metrics.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is applied when the request context has no deadline.
	DefaultTimeout = 30 * time.Second

	// DefaultDownloadTimeout bounds a whole image download, body included.
	DefaultDownloadTimeout = 5 * time.Minute

	// DefaultUserAgent matches what the Spotlight endpoint expects from browsers.
	DefaultUserAgent = "Mozilla/5.0"

	defaultMaxIdleConnsPerHost   = 4
	defaultIdleConnTimeout       = 30 * time.Second
	defaultTLSHandshakeTimeout   = 10 * time.Second
	defaultResponseHeaderTimeout = 15 * time.Second
	defaultDialTimeout           = 15 * time.Second
)

// Client wraps http.Client with timeout, User-Agent and rate handling.
// Safe for concurrent use.
type Client struct {
	client          *http.Client
	defaultTimeout  time.Duration
	downloadTimeout time.Duration
	userAgent       string
	limiter         *rate.Limiter

	hookMu        sync.RWMutex
	afterResponse func(*http.Request, *http.Response, error)
}

// Config holds configuration for creating an HTTP client.
type Config struct {
	// DefaultTimeout is the timeout applied if request context has no deadline
	DefaultTimeout time.Duration

	// DownloadTimeout bounds DownloadFile when its context has no deadline.
	DownloadTimeout time.Duration

	// UserAgent is added to requests that do not set one
	UserAgent string

	// RequestsPerSecond paces outgoing requests. Zero or negative disables pacing.
	RequestsPerSecond float64

	// Transport overrides the tuned default transport
	Transport http.RoundTripper
}

// New creates a client. A nil cfg uses defaults.
func New(cfg *Config) *Client {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = DefaultTimeout
	}
	if c.DownloadTimeout <= 0 {
		c.DownloadTimeout = DefaultDownloadTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Transport == nil {
		c.Transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   defaultDialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
			IdleConnTimeout:       defaultIdleConnTimeout,
			TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
			ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		}
	}

	limit := rate.Inf
	if c.RequestsPerSecond > 0 {
		limit = rate.Limit(c.RequestsPerSecond)
	}

	return &Client{
		client:          &http.Client{Transport: c.Transport},
		defaultTimeout:  c.DefaultTimeout,
		downloadTimeout: c.DownloadTimeout,
		userAgent:       c.UserAgent,
		limiter:         rate.NewLimiter(limit, 1),
	}
}

// HTTPClient exposes the underlying client, used by tests to install mocks.
func (c *Client) HTTPClient() *http.Client {
	return c.client
}

// Do waits for the rate limiter and executes req. When ctx has no deadline the
// default timeout covers the whole exchange, including reading the body.
// The response body must be closed by the caller if err is nil.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var cancel context.CancelFunc = func() {}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.defaultTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.defaultTimeout)
	}
	req = req.WithContext(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.hookMu.RLock()
	afterHook := c.afterResponse
	c.hookMu.RUnlock()

	resp, err := c.client.Do(req)
	if afterHook != nil {
		afterHook(req, resp, err)
	}
	if err != nil {
		cancel()
		return nil, err
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// Get performs a GET request with optional extra headers.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	return c.request(ctx, http.MethodGet, url, headers)
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, url string) (*http.Response, error) {
	return c.request(ctx, http.MethodHead, url, nil)
}

func (c *Client) request(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.Do(ctx, req)
}

// SetAfterResponseHook sets a function called after each request, with the
// response or the transport error.
func (c *Client) SetAfterResponseHook(fn func(*http.Request, *http.Response, error)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.afterResponse = fn
}

// Close closes idle connections in the connection pool.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

// cancelOnClose releases the request context once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
