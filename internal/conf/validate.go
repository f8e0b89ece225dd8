// conf/validate.go

package conf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tphakala/plasma-spotlight/internal/errors"
)

var resolutionPattern = regexp.MustCompile(`^\d+x\d+$`)

// IsValidResolution reports whether r is UHD or a WIDTHxHEIGHT token.
func IsValidResolution(r string) bool {
	return r == ResolutionUHD || resolutionPattern.MatchString(r)
}

// ClampBatch bounds a Spotlight batch count to the API's accepted range.
func ClampBatch(n int) int {
	return max(MinSpotlightBatch, min(MaxSpotlightBatch, n))
}

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings checks every setting and reports all problems at once.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}
	add := func(err error, key string) {
		if err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %v", key, err))
		}
	}

	add(validateChoice(settings.DownloadSources, SourceBing, SourceSpotlight, SourceBoth), "download_sources")
	add(validateChoice(settings.PreferredSource, SourceBing, SourceSpotlight), "preferred_source")
	add(validateChoice(settings.FailurePolicy, FailurePolicyAny, FailurePolicyAll), "failure_policy")
	add(validateEnvResolution(settings.Resolution), "resolution")

	if settings.FeedEnabled(SourceBing) {
		if len(settings.Bing.Regions) == 0 {
			ve.Errors = append(ve.Errors, "bing.regions: at least one region is required")
		}
		if settings.Paths.Bing == "" {
			ve.Errors = append(ve.Errors, "paths.bing: must not be empty")
		}
	}
	if settings.FeedEnabled(SourceSpotlight) && settings.Paths.Spotlight == "" {
		ve.Errors = append(ve.Errors, "paths.spotlight: must not be empty")
	}
	if settings.Paths.CacheDir == "" {
		ve.Errors = append(ve.Errors, "paths.cache_dir: must not be empty")
	}

	if settings.Network.MaxWait < 0 || settings.Network.PollInterval <= 0 {
		ve.Errors = append(ve.Errors, "network: max_wait must be >= 0 and poll_interval > 0")
	}
	if settings.HTTP.Timeout <= 0 {
		ve.Errors = append(ve.Errors, "http.timeout: must be positive")
	}
	if settings.HTTP.DownloadTimeout < settings.HTTP.Timeout {
		ve.Errors = append(ve.Errors, "http.download_timeout: must not be shorter than http.timeout")
	}
	if settings.Telemetry.Enabled && settings.Telemetry.DSN == "" {
		ve.Errors = append(ve.Errors, "telemetry.dsn: required when telemetry is enabled")
	}

	if len(ve.Errors) > 0 {
		return errors.New(ve).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}
