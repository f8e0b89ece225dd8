package collector

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Status is the terminal state of one feed run.
type Status int

const (
	// StatusOK means at least one new image was stored.
	StatusOK Status = iota
	// StatusZeroNew means the feed ran and found nothing new. Not an error.
	StatusZeroNew
	// StatusFailed means every query the feed issued failed outright.
	StatusFailed
	// StatusNotRun is reported for a feed that was not enabled.
	StatusNotRun
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusZeroNew:
		return "zero_new"
	case StatusFailed:
		return "failed"
	case StatusNotRun:
		return "not_run"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the per-item result counted on a Result.
type Outcome string

const (
	OutcomeDownloaded            Outcome = "downloaded"
	OutcomeExists                Outcome = "exists"
	OutcomeDuplicate             Outcome = "duplicate"
	OutcomeResolutionUnavailable Outcome = "resolution_unavailable"
	OutcomeDownloadFailed        Outcome = "download_failed"
	OutcomeInsufficientSpace     Outcome = "insufficient_space"
	OutcomeMalformed             Outcome = "malformed"
	OutcomeSidecarFailed         Outcome = "sidecar_failed"
)

// Result is what one feed produced in one run.
type Result struct {
	Feed string
	Dir  string
	// Paths lists stored images in processing order.
	Paths []string
	// Failed is set when every query failed at the transport level.
	Failed bool
	// Err is the last hard query error, set when Failed.
	Err      error
	Outcomes map[Outcome]int
}

func newResult(feed, dir string) *Result {
	return &Result{Feed: feed, Dir: dir, Outcomes: make(map[Outcome]int)}
}

func (r *Result) count(o Outcome) {
	r.Outcomes[o]++
}

// Status classifies the result. A nil result is a feed that did not run.
func (r *Result) Status() Status {
	switch {
	case r == nil:
		return StatusNotRun
	case r.Failed:
		return StatusFailed
	case len(r.Paths) == 0:
		return StatusZeroNew
	default:
		return StatusOK
	}
}

// First returns the first stored path, or "".
func (r *Result) First() string {
	if r == nil || len(r.Paths) == 0 {
		return ""
	}
	return r.Paths[0]
}

// Summary renders outcome counts as "downloaded=1 exists=3".
func (r *Result) Summary() string {
	if r == nil {
		return ""
	}
	keys := slices.Sorted(maps.Keys(r.Outcomes))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, r.Outcomes[k]))
	}
	return strings.Join(parts, " ")
}
