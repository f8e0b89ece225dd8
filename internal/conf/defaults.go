// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig registers a default for every key.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("download_sources", SourceBoth)
	v.SetDefault("preferred_source", SourceSpotlight)
	v.SetDefault("resolution", ResolutionUHD)
	v.SetDefault("failure_policy", FailurePolicyAny)
	v.SetDefault("update_lockscreen", true)
	v.SetDefault("update_sddm", true)

	v.SetDefault("bing.regions", []string{"en-US", "ja-JP", "intl"})

	v.SetDefault("spotlight.batch_count", 1)
	v.SetDefault("spotlight.country", "US")
	v.SetDefault("spotlight.locale", "en-US")

	v.SetDefault("paths.bing", "~/Pictures/Wallpapers/Bing")
	v.SetDefault("paths.spotlight", "~/Pictures/Wallpapers/Spotlight")
	v.SetDefault("paths.cache_dir", "/var/cache/"+AppName)

	v.SetDefault("network.probe_host", "www.bing.com")
	v.SetDefault("network.max_wait", 30*time.Second)
	v.SetDefault("network.poll_interval", 2*time.Second)

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.download_timeout", 5*time.Minute)
	v.SetDefault("http.requests_per_second", 2.0)
	v.SetDefault("http.user_agent", "Mozilla/5.0")

	v.SetDefault("disk.min_free_mb", 200)

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("notification.urls", []string{})
	v.SetDefault("notification.on_success", false)
	v.SetDefault("notification.on_failure", true)
	v.SetDefault("notification.timeout", 10*time.Second)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.dsn", "")

	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", true)
	v.SetDefault("logging.console.level", "info")
	v.SetDefault("logging.file_output.enabled", false)
	v.SetDefault("logging.file_output.path", "~/.local/state/"+AppName+"/"+AppName+".log")
	v.SetDefault("logging.file_output.level", "debug")
	v.SetDefault("logging.file_output.max_size", 10)
	v.SetDefault("logging.file_output.max_age", 30)
	v.SetDefault("logging.file_output.max_backups", 5)
	v.SetDefault("logging.file_output.compress", true)
}
