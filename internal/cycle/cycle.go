// Package cycle runs one download-and-apply pass over the enabled feeds.
package cycle

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/plasma-spotlight/internal/collector"
	"github.com/tphakala/plasma-spotlight/internal/conf"
	"github.com/tphakala/plasma-spotlight/internal/desktop"
	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/logger"
	"github.com/tphakala/plasma-spotlight/internal/notification"
	"github.com/tphakala/plasma-spotlight/internal/observability"
	"github.com/tphakala/plasma-spotlight/internal/schedule"
)

// StatusLayout is how Status renders the last run.
const StatusLayout = "2006-01-02 15:04:05 MST"

// NeverRun is printed by StatusText when no run was recorded.
const NeverRun = "Never run"

var (
	// ErrFeedsFailed aborts a run whose feeds failed outright under the failure policy.
	ErrFeedsFailed = errors.NewStd("feeds failed")

	// ErrApplyFailed aborts a run whose image could not be applied.
	ErrApplyFailed = errors.NewStd("failed to apply wallpaper")
)

// NetworkGate waits for connectivity. The result is advisory.
type NetworkGate interface {
	Wait(ctx context.Context) bool
}

// Notifier delivers run outcomes.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}

// Deps wires a Service. Collectors run in slice order.
type Deps struct {
	Collectors []collector.Collector
	Scheduler  *schedule.Scheduler
	Applier    desktop.Applier
	Gate       NetworkGate            // optional
	Notifier   Notifier               // optional
	Metrics    *observability.Metrics // optional
	Logger     logger.Logger          // optional
}

// Settings are the policy knobs of a Service.
type Settings struct {
	PreferredSource string
	FailurePolicy   string
	Targets         desktop.Targets
	MetricsTextfile string
}

// Options vary per invocation.
type Options struct {
	// Force bypasses the once-per-day gate.
	Force bool
	// DownloadOnly fetches but never applies or marks.
	DownloadOnly bool
}

// Report describes one invocation of RunDownloadCycle.
type Report struct {
	RunID    string
	Decision schedule.Decision
	// Skipped is set when the daily gate stopped the run.
	Skipped bool
	// Results holds one entry per enabled feed, in run order.
	Results  []*collector.Result
	Selected string
	Applied  bool
	Duration time.Duration
}

// Result returns the result of feed, or nil if it did not run.
func (r *Report) Result(feed string) *collector.Result {
	for _, res := range r.Results {
		if res.Feed == feed {
			return res
		}
	}
	return nil
}

// Bing returns the Bing result, or nil.
func (r *Report) Bing() *collector.Result { return r.Result(collector.FeedBing) }

// Spotlight returns the Spotlight result, or nil.
func (r *Report) Spotlight() *collector.Result { return r.Result(collector.FeedSpotlight) }

// Service is the entry point used by the CLI.
type Service struct {
	deps     Deps
	settings Settings
	log      logger.Logger
	newRunID func() string
}

// NewService returns a Service.
func NewService(settings Settings, deps Deps) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.Global().Module("cycle")
	}
	if settings.PreferredSource == "" {
		settings.PreferredSource = conf.SourceSpotlight
	}
	if settings.FailurePolicy == "" {
		settings.FailurePolicy = conf.FailurePolicyAny
	}
	return &Service{deps: deps, settings: settings, log: log, newRunID: uuid.NewString}
}

// RunDownloadCycle gates on the marker, runs every collector, picks an image
// and applies it. The marker is written only after a successful apply.
//
// A nil error with no Selected image means nothing new was found. Fatal
// outcomes return an error matching ErrFeedsFailed or ErrApplyFailed.
func (s *Service) RunDownloadCycle(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: s.newRunID()}
	ctx = logger.WithRunID(ctx, report.RunID)
	log := s.log.WithContext(ctx)

	defer func() {
		report.Duration = time.Since(start)
		s.flushMetrics(log, report)
	}()

	if opts.DownloadOnly {
		log.Info("Download only mode, daily gate, network wait and apply are skipped")
	} else {
		report.Decision = s.deps.Scheduler.Decide(opts.Force)
		if !report.Decision.ShouldRun {
			report.Skipped = true
			return report, nil
		}
		if s.deps.Gate != nil {
			s.deps.Gate.Wait(ctx)
		}
	}

	log.Info("Starting wallpaper download", logger.Int("feeds", len(s.deps.Collectors)))
	for _, c := range s.deps.Collectors {
		res := c.Collect(ctx)
		report.Results = append(report.Results, res)
		s.recordResult(res)
	}

	if err := s.checkFailures(report); err != nil {
		log.Error("Run aborted", logger.Error(err))
		s.notify(ctx, log, notification.Notification{
			Type:    notification.TypeFailure,
			Title:   "Wallpaper update failed",
			Message: err.Error(),
		})
		return report, err
	}

	if opts.DownloadOnly {
		log.Info("Download only mode, exiting", logger.Int("new_images", newImages(report)))
		return report, nil
	}

	report.Selected = s.selectImage(report)
	if report.Selected == "" {
		log.Info("No new images downloaded, nothing to apply")
		return report, nil
	}
	if !s.settings.Targets.Any() {
		log.Info("Lock screen and login updates are disabled, not applying", logger.String("image", report.Selected))
		return report, nil
	}

	log.Info("Applying wallpaper", logger.String("image", report.Selected))
	if err := s.deps.Applier.Apply(ctx, report.Selected, s.settings.Targets); err != nil {
		wrapped := errors.New(fmt.Errorf("%w: %w", ErrApplyFailed, err)).
			Component("cycle").
			Category(errors.CategoryDesktopApply).
			FileContext(report.Selected).
			Build()
		log.Error("Failed to apply wallpaper", logger.Error(wrapped))
		s.notify(ctx, log, notification.Notification{
			Type:    notification.TypeFailure,
			Title:   "Wallpaper update failed",
			Message: wrapped.Error(),
		})
		return report, wrapped
	}
	report.Applied = true

	if err := s.deps.Scheduler.MarkComplete(); err != nil {
		// The wallpaper is applied; the next scheduled run simply repeats.
		log.Error("Failed to update run marker", logger.Error(err))
	}
	s.notify(ctx, log, notification.Notification{
		Type:    notification.TypeSuccess,
		Title:   "Wallpaper updated",
		Message: filepath.Base(report.Selected),
	})
	log.Info("Wallpaper updated", logger.String("image", report.Selected))
	return report, nil
}

// checkFailures applies the failure policy to the feed results.
func (s *Service) checkFailures(report *Report) error {
	var failed []error
	var names []string
	for _, res := range report.Results {
		if res.Status() == collector.StatusFailed {
			names = append(names, res.Feed)
			failed = append(failed, res.Err)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	if s.settings.FailurePolicy == conf.FailurePolicyAll && len(failed) < len(report.Results) {
		s.log.Warn("Some feeds failed, continuing", logger.Strings("failed_feeds", names))
		return nil
	}
	return errors.New(fmt.Errorf("%w: %v: %w", ErrFeedsFailed, names, errors.Join(failed...))).
		Component("cycle").
		Category(errors.CategoryFeedFetch).
		Context("failed_feeds", names).
		Context("failure_policy", s.settings.FailurePolicy).
		Build()
}

// selectImage picks the first image of the preferred feed, else the first
// image of any other feed in run order.
func (s *Service) selectImage(report *Report) string {
	if p := report.Result(s.settings.PreferredSource).First(); p != "" {
		return p
	}
	for _, res := range report.Results {
		if p := res.First(); p != "" {
			return p
		}
	}
	return ""
}

func newImages(report *Report) int {
	n := 0
	for _, res := range report.Results {
		n += len(res.Paths)
	}
	return n
}

// Status returns the last successful run in local time.
func (s *Service) Status() (time.Time, bool) {
	return s.deps.Scheduler.Status()
}

// StatusText renders Status for humans.
func (s *Service) StatusText() string {
	t, ok := s.Status()
	if !ok {
		return NeverRun
	}
	return t.Format(StatusLayout)
}

// SetWallpaper applies imagePath immediately. The run marker is not touched,
// so the daily schedule is unaffected. With every target disabled in the
// configuration both targets are applied, since the request is explicit.
func (s *Service) SetWallpaper(ctx context.Context, imagePath string) error {
	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return errors.New(err).
			Component("cycle").
			Category(errors.CategoryValidation).
			FileContext(imagePath).
			Build()
	}
	targets := s.settings.Targets
	if !targets.Any() {
		targets = desktop.Targets{Lockscreen: true, SDDM: true}
	}
	if err := s.deps.Applier.Apply(ctx, abs, targets); err != nil {
		return errors.New(fmt.Errorf("%w: %w", ErrApplyFailed, err)).
			Component("cycle").
			Category(errors.CategoryDesktopApply).
			FileContext(abs).
			Build()
	}
	s.log.Info("Wallpaper set manually", logger.String("image", abs))
	return nil
}

func (s *Service) notify(ctx context.Context, log logger.Logger, n notification.Notification) {
	if s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.Notify(ctx, n); err != nil {
		log.Warn("Failed to send notification", logger.Error(err))
	}
}

func (s *Service) recordResult(res *collector.Result) {
	if s.deps.Metrics == nil {
		return
	}
	m := s.deps.Metrics.Cycle
	m.SetFeedFailed(res.Feed, res.Status() == collector.StatusFailed)
	for outcome, n := range res.Outcomes {
		if outcome == collector.OutcomeDownloaded {
			m.RecordDownloaded(res.Feed, n)
			continue
		}
		if outcome == collector.OutcomeSidecarFailed {
			continue
		}
		m.RecordSkipped(res.Feed, string(outcome), n)
	}
}

func (s *Service) flushMetrics(log logger.Logger, report *Report) {
	if s.deps.Metrics == nil {
		return
	}
	s.deps.Metrics.Cycle.ObserveDuration(report.Duration)
	// The marker is the durable record of the last success.
	if last, ok := s.deps.Scheduler.Status(); ok {
		s.deps.Metrics.Cycle.MarkSuccess(last)
	}
	if s.settings.MetricsTextfile == "" {
		return
	}
	if err := s.deps.Metrics.WriteTextfile(s.settings.MetricsTextfile); err != nil {
		log.Warn("Failed to write metrics textfile", logger.Error(err))
	}
}
