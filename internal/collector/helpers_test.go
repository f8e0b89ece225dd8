package collector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plasma-spotlight/internal/dedupe"
	"github.com/tphakala/plasma-spotlight/internal/httpclient"
	"github.com/tphakala/plasma-spotlight/internal/logger"
)

var jpegBody = string([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}) + "pixels"

var fixedNow = time.Date(2024, 6, 1, 8, 30, 0, 0, time.Local)

func testDeps(t *testing.T) (Deps, *logger.BufferLogger) {
	t.Helper()
	client := httpclient.New(&httpclient.Config{DefaultTimeout: 5 * time.Second})
	httpmock.ActivateNonDefault(client.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	buf := logger.NewBufferLogger()
	return Deps{
		Fetcher: client,
		Gate:    dedupe.NewGate(),
		Logger:  buf,
		Now:     func() time.Time { return fixedNow },
	}, buf
}

type fakeSpace struct {
	ok  bool
	err error
}

func (f fakeSpace) HasSpace(string) (bool, error) { return f.ok, f.err }

func readSidecar(t *testing.T, imagePath string) string {
	t.Helper()
	dir, file := filepath.Split(imagePath)
	stem := file[:len(file)-len(filepath.Ext(file))]
	data, err := os.ReadFile(filepath.Join(dir, "metadata", stem+".txt"))
	require.NoError(t, err)
	return string(data)
}
