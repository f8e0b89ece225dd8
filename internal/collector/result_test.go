package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultStatus(t *testing.T) {
	tests := []struct {
		name string
		res  *Result
		want Status
	}{
		{"disabled feed", nil, StatusNotRun},
		{"failed", &Result{Failed: true}, StatusFailed},
		{"nothing new", &Result{}, StatusZeroNew},
		{"stored images", &Result{Paths: []string{"/b/a.jpg"}}, StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Status())
		})
	}
}

func TestNilResultAccessors(t *testing.T) {
	var res *Result
	assert.Equal(t, "not_run", res.Status().String())
	assert.Empty(t, res.First())
	assert.Empty(t, res.Summary())
}

func TestResultSummary(t *testing.T) {
	res := newResult(FeedBing, "/b")
	res.count(OutcomeExists)
	res.count(OutcomeDownloaded)
	res.count(OutcomeExists)
	assert.Equal(t, "downloaded=1 exists=2", res.Summary())
}
