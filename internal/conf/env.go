// env.go - environment variable overrides for plasma-spotlight
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", EnvPrefix + "_DEBUG", validateEnvBool},
		{"download_sources", EnvPrefix + "_SOURCES", validateEnvSources},
		{"preferred_source", EnvPrefix + "_PREFERRED_SOURCE", validateEnvFeed},
		{"resolution", EnvPrefix + "_RESOLUTION", validateEnvResolution},
		{"failure_policy", EnvPrefix + "_FAILURE_POLICY", validateEnvFailurePolicy},
		{"update_lockscreen", EnvPrefix + "_UPDATE_LOCKSCREEN", validateEnvBool},
		{"update_sddm", EnvPrefix + "_UPDATE_SDDM", validateEnvBool},
		{"bing.regions", EnvPrefix + "_BING_REGIONS", nil},
		{"spotlight.batch_count", EnvPrefix + "_SPOTLIGHT_BATCH", validateEnvBatch},
		{"spotlight.country", EnvPrefix + "_SPOTLIGHT_COUNTRY", nil},
		{"spotlight.locale", EnvPrefix + "_SPOTLIGHT_LOCALE", nil},
		{"paths.cache_dir", EnvPrefix + "_CACHE_DIR", nil},
		{"metrics.textfile", EnvPrefix + "_METRICS_TEXTFILE", nil},
		{"telemetry.dsn", EnvPrefix + "_SENTRY_DSN", nil},
	}
}

// bindEnvVars binds every variable and validates the ones that are set.
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvSources(value string) error {
	return validateChoice(value, SourceBing, SourceSpotlight, SourceBoth)
}

func validateEnvFeed(value string) error {
	return validateChoice(value, SourceBing, SourceSpotlight)
}

func validateEnvFailurePolicy(value string) error {
	return validateChoice(value, FailurePolicyAny, FailurePolicyAll)
}

func validateEnvResolution(value string) error {
	if !IsValidResolution(value) {
		return fmt.Errorf("must be %s or WIDTHxHEIGHT", ResolutionUHD)
	}
	return nil
}

func validateEnvBatch(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n < MinSpotlightBatch || n > MaxSpotlightBatch {
		return fmt.Errorf("must be between %d and %d", MinSpotlightBatch, MaxSpotlightBatch)
	}
	return nil
}

func validateChoice(value string, choices ...string) error {
	for _, c := range choices {
		if value == c {
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(choices, ", "))
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables(v *viper.Viper) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return bindEnvVars(v)
}
