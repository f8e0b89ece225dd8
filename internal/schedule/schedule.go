// Package schedule gates the daily run on a persisted last-run marker.
package schedule

import (
	"time"

	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/logger"
)

// State is derived from the marker on every run.
type State int

const (
	NeverRun State = iota
	RanToday
	RanEarlier
)

func (s State) String() string {
	switch s {
	case RanToday:
		return "ran_today"
	case RanEarlier:
		return "ran_earlier"
	default:
		return "never_run"
	}
}

// Decision is the outcome of Decide.
type Decision struct {
	State     State
	ShouldRun bool
	Forced    bool
	// LastRun is the marker time in the scheduler's location; zero for NeverRun.
	LastRun time.Time
}

// Scheduler compares the marker's local date with today's local date.
type Scheduler struct {
	store MarkerStore
	now   func() time.Time
	loc   *time.Location
	log   logger.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLocation sets the zone that defines "today". Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New returns a Scheduler over store.
func New(store MarkerStore, opts ...Option) *Scheduler {
	s := &Scheduler{store: store, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Global().Module("schedule")
	}
	return s
}

// Decide reports whether a run should proceed. force bypasses the gate.
// An unreadable or corrupt marker counts as NeverRun.
func (s *Scheduler) Decide(force bool) Decision {
	var d Decision
	if last, err := s.lastRun(); err == nil {
		d.LastRun = last
		d.State = RanEarlier
		if sameDate(last, s.now().In(s.loc)) {
			d.State = RanToday
		}
	}
	switch {
	case force:
		d.ShouldRun, d.Forced = true, true
		s.log.Info("Refresh requested, ignoring last run")
	case d.State == RanToday:
		s.log.Info("Already updated today", logger.String("at", d.LastRun.Format(time.TimeOnly)))
	default:
		d.ShouldRun = true
		if d.State == RanEarlier {
			s.log.Debug("Last run was on an earlier day", logger.String("last_run", d.LastRun.Format(time.DateOnly)))
		}
	}
	return d
}

// MarkComplete records now, in UTC, as the last successful run.
func (s *Scheduler) MarkComplete() error {
	t := s.now().UTC()
	if err := s.store.Write(t); err != nil {
		return err
	}
	s.log.Debug("Run marker updated", logger.Time("at", t))
	return nil
}

// Status returns the last run in the scheduler's location, or ok=false.
func (s *Scheduler) Status() (time.Time, bool) {
	t, err := s.lastRun()
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (s *Scheduler) lastRun() (time.Time, error) {
	t, err := s.store.Read()
	if err != nil {
		if !errors.Is(err, ErrNoMarker) {
			s.log.Warn("Ignoring unreadable run marker", logger.Error(err))
		}
		return time.Time{}, err
	}
	return t.In(s.loc), nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
