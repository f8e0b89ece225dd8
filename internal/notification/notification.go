// Package notification sends run outcomes to shoutrrr service URLs.
package notification

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/logger"
)

// Type classifies a notification.
type Type string

const (
	TypeSuccess Type = "success"
	TypeFailure Type = "failure"
)

// DefaultTimeout bounds one delivery attempt.
const DefaultTimeout = 10 * time.Second

// Notification is one message.
type Notification struct {
	Type    Type
	Title   string
	Message string
}

// Sender delivers a message to every configured service and returns the
// per-service errors.
type Sender interface {
	Send(message string, params *stypes.Params) []error
}

// Config selects where and when to notify.
type Config struct {
	URLs      []string
	OnSuccess bool
	OnFailure bool
	Timeout   time.Duration
}

// Notifier filters notifications by type and delivers them.
type Notifier struct {
	cfg    Config
	sender Sender
	log    logger.Logger
}

// New builds a Notifier backed by shoutrrr. It returns (nil, nil) when no URLs
// are configured; a nil *Notifier ignores every notification.
func New(cfg Config, l logger.Logger) (*Notifier, error) {
	if len(cfg.URLs) == 0 {
		return nil, nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	sender, err := shoutrrr.CreateSender(cfg.URLs...)
	if err != nil {
		return nil, errors.New(fmt.Errorf("invalid notification URL: %s", redact(err.Error(), cfg.URLs))).
			Component("notification").
			Category(errors.CategoryConfiguration).
			Build()
	}
	sender.Timeout = cfg.Timeout
	sender.SetLogger(log.New(io.Discard, "", 0))
	return NewWithSender(cfg, sender, l), nil
}

// NewWithSender builds a Notifier around an existing sender.
func NewWithSender(cfg Config, sender Sender, l logger.Logger) *Notifier {
	if l == nil {
		l = logger.Global().Module("notification")
	}
	cfg.URLs = slices.Clone(cfg.URLs)
	return &Notifier{cfg: cfg, sender: sender, log: l}
}

// Enabled reports whether notifications of type t are delivered.
func (n *Notifier) Enabled(t Type) bool {
	if n == nil {
		return false
	}
	switch t {
	case TypeSuccess:
		return n.cfg.OnSuccess
	case TypeFailure:
		return n.cfg.OnFailure
	default:
		return false
	}
}

// Notify delivers msg if its type is enabled. Delivery errors are returned
// with service URLs redacted; callers usually just log them.
func (n *Notifier) Notify(ctx context.Context, msg Notification) error {
	if !n.Enabled(msg.Type) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := stypes.Params{}
	if msg.Title != "" {
		params.SetTitle(msg.Title)
	}
	var failures []error
	for _, err := range n.sender.Send(msg.Message, &params) {
		if err != nil {
			failures = append(failures, errors.NewStd(redact(err.Error(), n.cfg.URLs)))
		}
	}
	if len(failures) > 0 {
		return errors.New(errors.Join(failures...)).
			Component("notification").
			Category(errors.CategoryNotification).
			Context("type", string(msg.Type)).
			Context("failed_services", len(failures)).
			Build()
	}
	n.log.Debug("Notification sent", logger.String("type", string(msg.Type)))
	return nil
}

// redact replaces every service URL in s with its scheme, since URLs carry tokens.
func redact(s string, urls []string) string {
	for _, raw := range urls {
		scheme := "service"
		if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		s = strings.ReplaceAll(s, raw, scheme+"://[REDACTED]")
	}
	return s
}
