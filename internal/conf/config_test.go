package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plasma-spotlight/internal/errors"
)

// isolateEnv points HOME and XDG_CONFIG_HOME at a temp dir so no real config is read.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaultsWhenNoConfigFile(t *testing.T) {
	home := isolateEnv(t)

	settings, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, settings.ConfigFile)
	assert.Equal(t, SourceBoth, settings.DownloadSources)
	assert.Equal(t, SourceSpotlight, settings.PreferredSource)
	assert.Equal(t, ResolutionUHD, settings.Resolution)
	assert.Equal(t, FailurePolicyAny, settings.FailurePolicy)
	assert.Equal(t, []string{"en-US", "ja-JP", "intl"}, settings.Bing.Regions)
	assert.Equal(t, 1, settings.Spotlight.BatchCount)
	assert.Equal(t, filepath.Join(home, "Pictures/Wallpapers/Bing"), settings.Paths.Bing)
	assert.Equal(t, filepath.Join(home, "Pictures/Wallpapers/Spotlight"), settings.Paths.Spotlight)
	assert.Equal(t, "/var/cache/plasma-spotlight/last_run", settings.MarkerPath())
	assert.Equal(t, 30*time.Second, settings.Network.MaxWait)
	assert.Equal(t, 2*time.Second, settings.Network.PollInterval)
	assert.Equal(t, 30*time.Second, settings.HTTP.Timeout)
	assert.Equal(t, 5*time.Minute, settings.HTTP.DownloadTimeout)
}

func TestLoadYAMLFromDefaultPath(t *testing.T) {
	home := isolateEnv(t)
	writeFile(t, filepath.Join(home, ".config", AppName, "config.yaml"), `
download_sources: spotlight
preferred_source: bing
spotlight:
  batch_count: 9
network:
  max_wait: 5s
`)

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, SourceSpotlight, settings.DownloadSources)
	assert.Equal(t, SourceBing, settings.PreferredSource)
	assert.Equal(t, MaxSpotlightBatch, settings.Spotlight.BatchCount, "batch is clamped")
	assert.Equal(t, 5*time.Second, settings.Network.MaxWait)
	assert.True(t, settings.FeedEnabled(SourceSpotlight))
	assert.False(t, settings.FeedEnabled(SourceBing))
}

func TestLoadJSONConfigFile(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "custom.json")
	writeFile(t, path, `{"resolution": "1920x1080", "bing": {"regions": ["de-DE"]}, "paths": {"bing": "~/bing"}}`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, settings.ConfigFile)
	assert.Equal(t, "1920x1080", settings.Resolution)
	assert.Equal(t, []string{"de-DE"}, settings.Bing.Regions)
	assert.Equal(t, filepath.Join(home, "bing"), settings.Paths.Bing)
}

func TestLoadLegacyFlatJSONFromDefaultPath(t *testing.T) {
	home := isolateEnv(t)
	writeFile(t, filepath.Join(home, ".config", AppName, "config.json"), `{
  "save_path_bing": "/data/bing",
  "save_path_spotlight": "~/spot",
  "bing_regions": ["de-DE"],
  "spotlight_batch_count": 3,
  "spotlight_country": "DE",
  "spotlight_locale": "de-DE",
  "preferred_source": "bing",
  "update_sddm": false
}`)

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/data/bing", settings.Paths.Bing)
	assert.Equal(t, filepath.Join(home, "spot"), settings.Paths.Spotlight)
	assert.Equal(t, []string{"de-DE"}, settings.Bing.Regions)
	assert.Equal(t, 3, settings.Spotlight.BatchCount)
	assert.Equal(t, "DE", settings.Spotlight.Country)
	assert.Equal(t, "de-DE", settings.Spotlight.Locale)
	assert.Equal(t, SourceBing, settings.PreferredSource)
	assert.False(t, settings.UpdateSDDM)
	assert.Contains(t, settings.LegacyKeys, "save_path_bing")
	assert.Len(t, settings.LegacyKeys, 6)
}

func TestLegacyKeysYieldToCurrentKeysAndEnv(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "mixed.json")
	t.Setenv(EnvPrefix+"_SPOTLIGHT_BATCH", "2")
	writeFile(t, path, `{
  "save_path_bing": "/old/bing",
  "paths": {"bing": "/new/bing"},
  "spotlight_country": "DE",
  "spotlight_batch_count": 4
}`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/new/bing", settings.Paths.Bing)
	assert.Equal(t, "DE", settings.Spotlight.Country)
	assert.Equal(t, 2, settings.Spotlight.BatchCount, "environment beats the file")
	assert.NotContains(t, settings.LegacyKeys, "save_path_bing")
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	home := isolateEnv(t)

	_, err := Load(filepath.Join(home, "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestLoadInvalidValuesReportsAll(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "bad.yaml")
	writeFile(t, path, `
download_sources: flickr
preferred_source: both
resolution: huge
failure_policy: sometimes
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 4)
}

func TestLoadRejectsDownloadTimeoutShorterThanRequestTimeout(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "short.yaml")
	writeFile(t, path, `
http:
  timeout: 1m
  download_timeout: 10s
`)

	_, err := Load(path)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"http.download_timeout: must not be shorter than http.timeout"}, ve.Errors)
}

func TestEnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvPrefix+"_SOURCES", "bing")
	t.Setenv(EnvPrefix+"_BING_REGIONS", "en-GB,fr-FR")
	t.Setenv(EnvPrefix+"_SPOTLIGHT_BATCH", "3")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, SourceBing, settings.DownloadSources)
	assert.Equal(t, []string{"en-GB", "fr-FR"}, settings.Bing.Regions)
	assert.Equal(t, 3, settings.Spotlight.BatchCount)
}

func TestEnvironmentValidation(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvPrefix+"_SPOTLIGHT_BATCH", "7")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvPrefix+"_SPOTLIGHT_BATCH")
}

func TestDebugRaisesLogLevel(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvPrefix+"_DEBUG", "true")

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", settings.Logging.DefaultLevel)
	assert.Equal(t, "debug", settings.Logging.Console.Level)
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "out", "config.yaml")

	require.NoError(t, WriteDefault(path, Defaults(), false))
	require.Error(t, WriteDefault(path, Defaults(), false), "existing file is kept")
	require.NoError(t, WriteDefault(path, Defaults(), true))

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults().Bing.Regions, settings.Bing.Regions)
	assert.Equal(t, 30*time.Second, settings.Network.MaxWait)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestClampBatch(t *testing.T) {
	assert.Equal(t, 1, ClampBatch(0))
	assert.Equal(t, 1, ClampBatch(-3))
	assert.Equal(t, 2, ClampBatch(2))
	assert.Equal(t, 4, ClampBatch(12))
}

func TestIsValidResolution(t *testing.T) {
	assert.True(t, IsValidResolution("UHD"))
	assert.True(t, IsValidResolution("1920x1080"))
	assert.False(t, IsValidResolution("uhd"))
	assert.False(t, IsValidResolution("1920x"))
}
