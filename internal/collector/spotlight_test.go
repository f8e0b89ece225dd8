package collector

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	assetHost = "https://img-prod-cms-rt-microsoft-com.akamaized.net/cms/api/am/imageFileData/"
	duneAsset = assetHost + "AA1x_desktop-dunes_ds_GoldenDunes_gettyimages-12345_3840x2160.jpg"
)

var spotlightQuery = map[string]string{
	"placement": "88000820",
	"bcnt":      "1",
	"country":   "US",
	"locale":    "en-US",
	"fmt":       "json",
}

// batchBody wraps each ad as the API does: a JSON document stored as a string.
func batchBody(t *testing.T, ads ...map[string]any) string {
	t.Helper()
	items := make([]map[string]string, 0, len(ads))
	for _, ad := range ads {
		inner, err := json.Marshal(map[string]any{"ad": ad})
		require.NoError(t, err)
		items = append(items, map[string]string{"item": string(inner)})
	}
	out, err := json.Marshal(map[string]any{"batchrsp": map[string]any{"items": items}})
	require.NoError(t, err)
	return string(out)
}

func duneAd() map[string]any {
	return map[string]any{
		"landscapeImage": map[string]any{"asset": duneAsset},
		"title":          "Golden hour",
		"iconHoverText":  "Namib Desert, Namibia",
		"description":    "<p>Wind shapes the dunes.</p>",
		"copyright":      "© Photographer / Getty Images",
		"relatedHotspots": []map[string]any{
			{"label": "Sand"}, {"label": ""}, {"label": "Sun"},
		},
	}
}

func newSpotlight(deps Deps, dir string) *SpotlightCollector {
	return NewSpotlightCollector(SpotlightConfig{BatchCount: 1, Country: "US", Locale: "en-US", Dir: dir}, deps)
}

func TestSpotlightCollectDownloads(t *testing.T) {
	deps, _ := testDeps(t)
	dir := t.TempDir()

	var gotUA string
	httpmock.RegisterResponderWithQuery(http.MethodGet, SpotlightAPI, spotlightQuery,
		func(req *http.Request) (*http.Response, error) {
			gotUA = req.Header.Get("User-Agent")
			return httpmock.NewStringResponse(http.StatusOK, batchBody(t, duneAd())), nil
		})
	httpmock.RegisterResponder(http.MethodGet, duneAsset, httpmock.NewStringResponder(http.StatusOK, jpegBody))

	res := newSpotlight(deps, dir).Collect(t.Context())

	want := filepath.Join(dir, "GoldenDunes_3840x2160.jpg")
	require.Equal(t, []string{want}, res.Paths)
	assert.Equal(t, StatusOK, res.Status())
	assert.Equal(t, "Mozilla/5.0", gotUA)

	// Spotlight assets are downloaded directly.
	assert.Zero(t, httpmock.GetCallCountInfo()["HEAD "+duneAsset])

	meta := readSidecar(t, want)
	assert.Contains(t, meta, "SPOTLIGHT METADATA")
	assert.Contains(t, meta, "Namib Desert, Namibia")
	assert.Contains(t, meta, "Wind shapes the dunes.")
	assert.NotContains(t, meta, "<p>")
	assert.Contains(t, meta, "Sand, Sun")
	assert.Contains(t, meta, duneAsset)
}

func TestSpotlightCollectDefaultsMissingFields(t *testing.T) {
	deps, _ := testDeps(t)
	dir := t.TempDir()

	ad := map[string]any{"landscapeImage": map[string]any{"asset": duneAsset}}
	httpmock.RegisterResponderWithQuery(http.MethodGet, SpotlightAPI, spotlightQuery,
		httpmock.NewStringResponder(http.StatusOK, batchBody(t, ad)))
	httpmock.RegisterResponder(http.MethodGet, duneAsset, httpmock.NewStringResponder(http.StatusOK, jpegBody))

	res := newSpotlight(deps, dir).Collect(t.Context())
	require.Len(t, res.Paths, 1)

	meta := readSidecar(t, res.Paths[0])
	assert.Contains(t, meta, "No Title")
	assert.Contains(t, meta, "No Description")
	assert.Contains(t, meta, "No Copyright")
	assert.NotContains(t, meta, "Location Subject")
}

func TestSpotlightCollectExistingFile(t *testing.T) {
	deps, _ := testDeps(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "GoldenDunes_3840x2160.jpg"), []byte("old"), 0o644))

	httpmock.RegisterResponderWithQuery(http.MethodGet, SpotlightAPI, spotlightQuery,
		httpmock.NewStringResponder(http.StatusOK, batchBody(t, duneAd())))

	res := newSpotlight(deps, dir).Collect(t.Context())

	assert.Equal(t, StatusZeroNew, res.Status())
	assert.Equal(t, 1, res.Outcomes[OutcomeExists])
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSpotlightCollectSkipsBadItems(t *testing.T) {
	deps, _ := testDeps(t)
	dir := t.TempDir()

	body := `{"batchrsp":{"items":[
		{"item":""},
		{"item":"{not json"},
		{"item":"{\"ad\":{\"title\":\"no image\"}}"},
		{"other":"x"}
	]}}`
	httpmock.RegisterResponderWithQuery(http.MethodGet, SpotlightAPI, spotlightQuery,
		httpmock.NewStringResponder(http.StatusOK, body))

	res := newSpotlight(deps, dir).Collect(t.Context())

	assert.Equal(t, StatusZeroNew, res.Status())
	assert.Equal(t, 4, res.Outcomes[OutcomeMalformed])
}

func TestSpotlightCollectUnknownSourceLogged(t *testing.T) {
	deps, buf := testDeps(t)
	dir := t.TempDir()

	asset := assetHost + "desktop-x_ds_Harbor_newagency-99_3840x2160.jpg"
	ad := map[string]any{"landscapeImage": map[string]any{"asset": asset}, "title": "Harbor"}
	httpmock.RegisterResponderWithQuery(http.MethodGet, SpotlightAPI, spotlightQuery,
		httpmock.NewStringResponder(http.StatusOK, batchBody(t, ad)))
	httpmock.RegisterResponder(http.MethodGet, asset, httpmock.NewStringResponder(http.StatusOK, jpegBody))

	res := newSpotlight(deps, dir).Collect(t.Context())

	require.Len(t, res.Paths, 1)
	assert.Equal(t, filepath.Join(dir, "Harbor_3840x2160.jpg"), res.Paths[0])
	assert.Contains(t, buf.String(), "New image source detected")
	assert.Contains(t, buf.String(), "newagency")
}

func TestSpotlightCollectFailureStates(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		want      Status
	}{
		{"server error", httpmock.NewStringResponder(http.StatusServiceUnavailable, ""), StatusFailed},
		{"transport error", httpmock.NewErrorResponder(assert.AnError), StatusFailed},
		{"null body", httpmock.NewStringResponder(http.StatusOK, "null"), StatusZeroNew},
		{"empty body", httpmock.NewStringResponder(http.StatusOK, ""), StatusZeroNew},
		{"invalid json", httpmock.NewStringResponder(http.StatusOK, "<html>"), StatusZeroNew},
		{"no items", httpmock.NewStringResponder(http.StatusOK, `{"batchrsp":{}}`), StatusZeroNew},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _ := testDeps(t)
			httpmock.RegisterResponderWithQuery(http.MethodGet, SpotlightAPI, spotlightQuery, tt.responder)

			res := newSpotlight(deps, t.TempDir()).Collect(t.Context())
			assert.Equal(t, tt.want, res.Status())
			if tt.want == StatusFailed {
				assert.Error(t, res.Err)
			}
		})
	}
}

func TestSpotlightSelectionURL(t *testing.T) {
	c := NewSpotlightCollector(SpotlightConfig{BatchCount: 3, Country: "JP", Locale: "ja-JP"}, Deps{})
	assert.Equal(t,
		SpotlightAPI+"?bcnt=3&country=JP&fmt=json&locale=ja-JP&placement=88000820",
		c.SelectionURL())
}
