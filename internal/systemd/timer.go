// Package systemd toggles the per-user timer that triggers the daily run.
// Unit files are installed separately; this package only enables, disables
// and inspects them.
package systemd

import (
	"context"
	"strings"

	"github.com/tphakala/plasma-spotlight/internal/command"
	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/logger"
)

// TimerName is the user timer unit.
const TimerName = "plasma-spotlight.timer"

const systemctl = "systemctl"

// TimerStatus is what systemctl reports for the timer.
type TimerStatus struct {
	Enabled string // "enabled", "disabled", "not-found", ...
	Active  string // "active", "inactive", ...
}

func (s TimerStatus) String() string {
	return TimerName + ": " + s.Enabled + ", " + s.Active
}

// Timer wraps systemctl --user for TimerName.
type Timer struct {
	runner command.Runner
	log    logger.Logger
}

// NewTimer returns a Timer. A nil runner runs real commands.
func NewTimer(runner command.Runner, log logger.Logger) *Timer {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	if log == nil {
		log = logger.Global().Module("systemd")
	}
	return &Timer{runner: runner, log: log}
}

// Enable enables and starts the timer.
func (t *Timer) Enable(ctx context.Context) error {
	if _, err := t.runner.Run(ctx, systemctl, "--user", "enable", "--now", TimerName); err != nil {
		return timerError(err, "enable")
	}
	t.log.Info("Timer enabled", logger.String("unit", TimerName))
	return nil
}

// Disable stops and disables the timer.
func (t *Timer) Disable(ctx context.Context) error {
	if _, err := t.runner.Run(ctx, systemctl, "--user", "disable", "--now", TimerName); err != nil {
		return timerError(err, "disable")
	}
	t.log.Info("Timer disabled", logger.String("unit", TimerName))
	return nil
}

// Status queries is-enabled and is-active. Both commands exit non-zero for a
// disabled or inactive unit, so only the printed state is used.
func (t *Timer) Status(ctx context.Context) TimerStatus {
	return TimerStatus{
		Enabled: t.query(ctx, "is-enabled"),
		Active:  t.query(ctx, "is-active"),
	}
}

func (t *Timer) query(ctx context.Context, verb string) string {
	out, err := t.runner.Run(ctx, systemctl, "--user", verb, TimerName)
	state := strings.TrimSpace(firstLine(string(out)))
	if state == "" {
		if err != nil {
			t.log.Debug("systemctl query failed", logger.String("verb", verb), logger.Error(err))
		}
		return "unknown"
	}
	return state
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func timerError(err error, op string) error {
	return errors.New(err).
		Component("systemd").
		Category(errors.CategoryCommandExecution).
		Context("unit", TimerName).
		Context("operation", op).
		Build()
}
