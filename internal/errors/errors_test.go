package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	reported []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) {
	r.reported = append(r.reported, ee)
	ee.MarkReported()
}

func (r *recordingReporter) IsEnabled() bool { return true }

func TestBuildDefaults(t *testing.T) {
	SetTelemetryReporter(nil)

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.IsReported())
}

func TestBuildInheritsWrappedCategory(t *testing.T) {
	inner := Newf("dns lookup failed").Category(CategoryNetwork).Build()
	outer := New(fmt.Errorf("fetch feed: %w", inner)).Component("collector").Build()

	assert.Equal(t, CategoryNetwork, outer.Category)
	assert.True(t, IsCategory(outer, CategoryNetwork))
	assert.ErrorIs(t, outer, inner)
}

func TestIsMatchesByCategory(t *testing.T) {
	sentinel := Newf("sentinel").Category(CategoryNotFound).Build()
	other := Newf("different message").Category(CategoryNotFound).Build()

	assert.True(t, Is(other, sentinel))
	assert.True(t, IsCategory(other, CategoryNotFound))
	assert.False(t, IsCategory(other, CategoryMarker))
}

func TestStdSentinelMatchesOnlyWhenWrapped(t *testing.T) {
	sentinel := NewStd("feeds failed")

	unrelated := Newf("dial tcp: connection refused").Category(CategoryFeedFetch).Build()
	assert.NotErrorIs(t, unrelated, sentinel)

	wrapped := New(fmt.Errorf("%w: [bing]", sentinel)).Category(CategoryFeedFetch).Build()
	assert.ErrorIs(t, wrapped, sentinel)
	assert.True(t, IsCategory(wrapped, CategoryFeedFetch))
}

func TestContextHelpers(t *testing.T) {
	ee := Newf("download failed").
		URLContext("https://www.bing.com/th?id=OHR.Foo_UHD.jpg").
		FileContext("/tmp/Foo_UHD.jpg").
		Context("operation", "download").
		Build()

	ctx := ee.GetContext()
	assert.Equal(t, "https://www.bing.com/th?[REDACTED]", ctx["url"])
	assert.Equal(t, "jpg", ctx["file_extension"])
	assert.Equal(t, "download", ctx["operation"])

	ctx["operation"] = "mutated"
	assert.Equal(t, "download", ee.GetContext()["operation"])
}

func TestTelemetryReporterReceivesErrors(t *testing.T) {
	reporter := &recordingReporter{}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := Newf("apply failed").Component("desktop").Category(CategoryDesktopApply).Build()

	require.Len(t, reporter.reported, 1)
	assert.Same(t, ee, reporter.reported[0])
	assert.True(t, ee.IsReported())
}

func TestBasicURLScrub(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"query string", "Error at https://api.example.com?mkt=en-US&n=8", "Error at https://api.example.com?[REDACTED]"},
		{"home dir", "open /home/alice/Pictures/x.jpg: denied", "open /home/[USER]/Pictures/x.jpg: denied"},
		{"plain", "nothing to scrub", "nothing to scrub"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, basicURLScrub(tt.input))
		})
	}
}

func TestGenerateErrorTitle(t *testing.T) {
	ee := Newf("x").
		Component("collector").
		Category(CategoryFeedFetch).
		Context("operation", "fetch_bing_archive").
		Build()

	assert.Equal(t, "Collector Feed Fetch Error Fetch Bing Archive", generateErrorTitle(ee))
}
