package conf

// Feed names accepted by download_sources and preferred_source.
const (
	SourceBing      = "bing"
	SourceSpotlight = "spotlight"
	SourceBoth      = "both"
)

// Failure policies decide when a hard feed failure aborts the run.
const (
	// FailurePolicyAny aborts when any enabled feed failed outright.
	FailurePolicyAny = "any"
	// FailurePolicyAll aborts only when every enabled feed failed outright.
	FailurePolicyAll = "all"
)

// Spotlight batch bounds accepted by the selection API.
const (
	MinSpotlightBatch = 1
	MaxSpotlightBatch = 4
)

// ResolutionUHD is the Bing token for the largest rendition.
const ResolutionUHD = "UHD"

// AppName names the config directory, cache directory and systemd units.
const AppName = "plasma-spotlight"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLASMA_SPOTLIGHT"
