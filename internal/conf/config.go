// Package conf loads and validates plasma-spotlight settings.
package conf

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/plasma-spotlight/internal/errors"
	"github.com/tphakala/plasma-spotlight/internal/logger"
)

// Settings holds the configuration for one invocation. It is read-only once loaded.
type Settings struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`

	DownloadSources  string `mapstructure:"download_sources" yaml:"download_sources"` // bing, spotlight or both
	PreferredSource  string `mapstructure:"preferred_source" yaml:"preferred_source"` // feed whose first image wins
	Resolution       string `mapstructure:"resolution" yaml:"resolution"`             // Bing rendition, UHD or WxH
	FailurePolicy    string `mapstructure:"failure_policy" yaml:"failure_policy"`     // any or all
	UpdateLockscreen bool   `mapstructure:"update_lockscreen" yaml:"update_lockscreen"`
	UpdateSDDM       bool   `mapstructure:"update_sddm" yaml:"update_sddm"`

	Bing         BingSettings         `mapstructure:"bing" yaml:"bing"`
	Spotlight    SpotlightSettings    `mapstructure:"spotlight" yaml:"spotlight"`
	Paths        PathSettings         `mapstructure:"paths" yaml:"paths"`
	Network      NetworkSettings      `mapstructure:"network" yaml:"network"`
	HTTP         HTTPSettings         `mapstructure:"http" yaml:"http"`
	Disk         DiskSettings         `mapstructure:"disk" yaml:"disk"`
	Metrics      MetricsSettings      `mapstructure:"metrics" yaml:"metrics"`
	Notification NotificationSettings `mapstructure:"notification" yaml:"notification"`
	Telemetry    TelemetrySettings    `mapstructure:"telemetry" yaml:"telemetry"`
	Logging      logger.LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// ConfigFile is the file the settings were read from, empty when defaults were used.
	ConfigFile string `mapstructure:"-" yaml:"-"`
	// LegacyKeys lists first-format keys that were read from ConfigFile.
	LegacyKeys []string `mapstructure:"-" yaml:"-"`
}

// BingSettings configures the Bing archive feed.
type BingSettings struct {
	Regions []string `mapstructure:"regions" yaml:"regions"` // one archive query per market
}

// SpotlightSettings configures the Spotlight selection feed.
type SpotlightSettings struct {
	BatchCount int    `mapstructure:"batch_count" yaml:"batch_count"` // 1-4
	Country    string `mapstructure:"country" yaml:"country"`
	Locale     string `mapstructure:"locale" yaml:"locale"`
}

// PathSettings holds destination directories and the system cache directory.
type PathSettings struct {
	Bing      string `mapstructure:"bing" yaml:"bing"`
	Spotlight string `mapstructure:"spotlight" yaml:"spotlight"`
	CacheDir  string `mapstructure:"cache_dir" yaml:"cache_dir"` // holds current.jpg and last_run
}

// NetworkSettings configures the DNS readiness probe.
type NetworkSettings struct {
	ProbeHost    string        `mapstructure:"probe_host" yaml:"probe_host"`
	MaxWait      time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// HTTPSettings configures the shared HTTP client.
type HTTPSettings struct {
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	DownloadTimeout   time.Duration `mapstructure:"download_timeout" yaml:"download_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// DiskSettings configures the free-space guard.
type DiskSettings struct {
	MinFreeMB uint64 `mapstructure:"min_free_mb" yaml:"min_free_mb"` // 0 disables the check
}

// MetricsSettings configures the node-exporter textfile output.
type MetricsSettings struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"` // empty disables metrics
}

// NotificationSettings configures shoutrrr push notifications.
type NotificationSettings struct {
	URLs      []string      `mapstructure:"urls" yaml:"urls"`
	OnSuccess bool          `mapstructure:"on_success" yaml:"on_success"`
	OnFailure bool          `mapstructure:"on_failure" yaml:"on_failure"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// TelemetrySettings configures optional Sentry error reporting.
type TelemetrySettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
}

// Load reads settings from configFile, or from the default search paths when
// configFile is empty. A missing default file is not an error.
func Load(configFile string) (*Settings, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v, err := newViper(configFile)
	if err != nil {
		return nil, err
	}
	legacy, err := migrateLegacyKeys(v)
	if err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	settings.ConfigFile = v.ConfigFileUsed()
	settings.LegacyKeys = legacy

	if err := settings.normalize(); err != nil {
		return nil, err
	}
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Defaults returns settings built from defaults only.
func Defaults() *Settings {
	v := viper.New()
	setDefaultConfig(v)
	settings := &Settings{}
	// Defaults always decode.
	_ = v.Unmarshal(settings)
	_ = settings.normalize()
	return settings
}

func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaultConfig(v)

	if err := configureEnvironmentVariables(v); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "bind_env").
			Build()
	}

	if configFile != "" {
		v.SetConfigFile(ExpandPath(configFile))
	} else {
		v.SetConfigName("config")
		for _, path := range GetDefaultConfigPaths() {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, errors.New(fmt.Errorf("error reading config file: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			FileContext(configFile).
			Build()
	}
	return v, nil
}

// loadDotEnv loads KEY=VALUE pairs from path without overriding the real environment.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return errors.New(fmt.Errorf("error reading %s: %w", path, err)).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Build()
}

// normalize expands ~ in paths and clamps the Spotlight batch count.
func (s *Settings) normalize() error {
	s.Paths.Bing = ExpandPath(s.Paths.Bing)
	s.Paths.Spotlight = ExpandPath(s.Paths.Spotlight)
	s.Paths.CacheDir = ExpandPath(s.Paths.CacheDir)
	s.Metrics.Textfile = ExpandPath(s.Metrics.Textfile)
	if s.Logging.FileOutput != nil {
		s.Logging.FileOutput.Path = ExpandPath(s.Logging.FileOutput.Path)
	}
	s.Spotlight.BatchCount = ClampBatch(s.Spotlight.BatchCount)
	if s.Debug {
		s.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if s.Logging.Console != nil {
			s.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}
	return nil
}

// FeedEnabled reports whether download_sources selects the named feed.
func (s *Settings) FeedEnabled(feed string) bool {
	return s.DownloadSources == SourceBoth || s.DownloadSources == feed
}

// MarkerPath is the well-known location of the last-run marker.
func (s *Settings) MarkerPath() string {
	return filepath.Join(s.Paths.CacheDir, "last_run")
}

// WriteDefault writes the settings as YAML to path. Existing files are kept
// unless force is set.
func WriteDefault(path string, settings *Settings, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.Newf("config file already exists: %s", path).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(fmt.Errorf("error creating directories for config file: %w", err)).
			Component("conf").
			Category(errors.CategoryFileIO).
			Build()
	}
	return SaveYAMLConfig(path, settings)
}

// SaveYAMLConfig atomically replaces configPath with settings marshaled as YAML.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err := os.Chmod(tempFileName, 0o644); err != nil {
		return fmt.Errorf("error setting config file mode: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}
