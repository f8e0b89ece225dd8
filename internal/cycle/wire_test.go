package cycle

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plasma-spotlight/internal/httpclient"
	"github.com/tphakala/plasma-spotlight/internal/observability"
)

func TestRequestCounterCountsEveryOutcome(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	client := httpclient.New(nil)
	httpmock.ActivateNonDefault(client.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	client.SetAfterResponseHook(requestCounter(m))

	httpmock.RegisterResponder(http.MethodGet, "https://www.bing.com/HPImageArchive.aspx",
		httpmock.NewStringResponder(http.StatusOK, "{}"))
	httpmock.RegisterResponder(http.MethodHead, "https://www.bing.com/missing.jpg",
		httpmock.NewStringResponder(http.StatusNotFound, ""))
	httpmock.RegisterResponder(http.MethodGet, "https://fd.api.iris.microsoft.com/v4/api/selection",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	resp, err := client.Get(t.Context(), "https://www.bing.com/HPImageArchive.aspx", nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.False(t, client.ProbeExists(t.Context(), "https://www.bing.com/missing.jpg"))
	_, err = client.Get(t.Context(), "https://fd.api.iris.microsoft.com/v4/api/selection", nil)
	require.Error(t, err)

	requests := m.Cycle.HTTPRequests
	assert.InDelta(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("www.bing.com", "GET", "200")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("www.bing.com", "HEAD", "404")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("fd.api.iris.microsoft.com", "GET", "error")), 0)
}
