package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Level identifies which Spotlight rule produced a name.
type Level int

const (
	LevelSpotlightID Level = iota + 1 // spotlightid= in the call-to-action URI
	LevelExtracted                    // name segment cut out of a desktop- file name
	LevelDesktopTrim                  // file name trimmed to start at desktop-
	LevelTitle                        // sanitized title
	LevelVanilla                      // raw file name
	LevelFallback                     // deterministic id when nothing else was usable
)

func (l Level) String() string {
	switch l {
	case LevelSpotlightID:
		return "spotlight_id"
	case LevelExtracted:
		return "extracted"
	case LevelDesktopTrim:
		return "desktop_trim"
	case LevelTitle:
		return "title"
	case LevelVanilla:
		return "vanilla"
	case LevelFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// KnownSources are stock-photo agency tokens that mark the end of the name
// segment in Spotlight asset file names.
var KnownSources = []string{
	"gettyimages",
	"shutterstock",
	"adobestock",
	"estockphoto",
	"alamy",
	"pocstock",
	"designpics",
	"superstock",
	"age-",
}

const (
	desktopMarker  = "desktop-"
	dsMarker       = "_ds_"
	spotlightIDKey = "spotlightid="
	maxShortPrefix = 4
)

var (
	unknownSourcePattern = regexp.MustCompile(`_[a-z][a-z-]*[-_]\d`)
	nonAlnumPattern      = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// SpotlightCandidate is the subset of a Spotlight record used for naming.
type SpotlightCandidate struct {
	AssetURL string // landscape image asset URL
	CTAURI   string // call-to-action URI, may carry spotlightid=
	Title    string
}

// SpotlightInput is what each rule sees: the candidate plus values derived once.
type SpotlightInput struct {
	SpotlightCandidate
	RawFilename string
	Resolution  string
}

// Match is a rule's answer. UnknownSource is set when the name was cut at an
// agency token that is not in KnownSources.
type Match struct {
	Name          string
	UnknownSource string
}

// Rule is one step of the Spotlight fallback chain.
type Rule struct {
	Level Level
	Apply func(in SpotlightInput) (Match, bool)
}

// SpotlightRules is the fallback chain in evaluation order. The first rule
// that applies wins.
var SpotlightRules = []Rule{
	{LevelSpotlightID, nameFromSpotlightID},
	{LevelExtracted, nameFromRawFilename},
	{LevelDesktopTrim, nameFromDesktopTrim},
	{LevelTitle, nameFromTitle},
	{LevelVanilla, nameVanilla},
}

// SpotlightResult is the resolved name and the rule that produced it.
type SpotlightResult struct {
	Name          string
	Level         Level
	UnknownSource string
}

// SpotlightName maps a candidate to its canonical file name. It never fails
// and never returns a name containing a path separator.
func SpotlightName(c SpotlightCandidate) SpotlightResult {
	in := SpotlightInput{
		SpotlightCandidate: c,
		RawFilename:        RawFilename(c.AssetURL),
		Resolution:         ParseResolution(c.AssetURL),
	}
	for _, rule := range SpotlightRules {
		m, ok := rule.Apply(in)
		if !ok {
			continue
		}
		if name := Sanitize(m.Name); name != "" {
			return SpotlightResult{Name: name, Level: rule.Level, UnknownSource: m.UnknownSource}
		}
	}
	return SpotlightResult{Name: fallbackName(c.AssetURL + "|" + c.CTAURI + "|" + c.Title), Level: LevelFallback}
}

// nameFromSpotlightID uses the spotlightid query value. A short internal code
// prefix such as "AB_" is dropped when the remainder starts with a capital.
func nameFromSpotlightID(in SpotlightInput) (Match, bool) {
	i := strings.Index(in.CTAURI, spotlightIDKey)
	if i < 0 {
		return Match{}, false
	}
	id, _, _ := strings.Cut(in.CTAURI[i+len(spotlightIDKey):], "&")
	if id == "" {
		return Match{}, false
	}

	if prefix, rest, found := strings.Cut(id, "_"); found && len(prefix) <= maxShortPrefix && startsUpper(rest) {
		id = rest
	}
	return Match{Name: withResolution(id, in.Resolution)}, true
}

// nameFromRawFilename cuts the human-readable segment out of names like
// "..._desktop-x_ds_MountainView_gettyimages-123_3840x2160.jpg".
func nameFromRawFilename(in SpotlightInput) (Match, bool) {
	raw := in.RawFilename
	d := strings.Index(raw, desktopMarker)
	if d < 0 {
		return Match{}, false
	}

	var start int
	if ds := strings.Index(raw, dsMarker); ds >= 0 {
		start = ds + len(dsMarker)
	} else {
		u := strings.Index(raw[d:], "_")
		if u < 0 {
			return Match{}, false
		}
		start = d + u + 1
	}
	namePart := raw[start:]

	end, unknown := nameSegmentEnd(namePart)
	if end <= 0 || end >= len(namePart) {
		return Match{}, false
	}
	return Match{Name: withResolution(namePart[:end], in.Resolution), UnknownSource: unknown}, true
}

// nameSegmentEnd finds where the name ends: the earliest "_<known source>",
// else the first "_<lowercase token><sep><digit>". The second return value
// names the agency when it came from the pattern.
func nameSegmentEnd(namePart string) (int, string) {
	end := -1
	for _, source := range KnownSources {
		if pos := strings.Index(namePart, "_"+source); pos >= 0 && (end < 0 || pos < end) {
			end = pos
		}
	}
	if end >= 0 {
		return end, ""
	}

	loc := unknownSourcePattern.FindStringIndex(namePart)
	if loc == nil {
		return len(namePart), ""
	}
	source := namePart[loc[0]+1:]
	source, _, _ = strings.Cut(source, "-")
	source, _, _ = strings.Cut(source, "_")
	return loc[0], source
}

func nameFromDesktopTrim(in SpotlightInput) (Match, bool) {
	d := strings.Index(in.RawFilename, desktopMarker)
	if d < 0 {
		return Match{}, false
	}
	return Match{Name: in.RawFilename[d:]}, true
}

func nameFromTitle(in SpotlightInput) (Match, bool) {
	safe := nonAlnumPattern.ReplaceAllString(in.Title, "")
	if safe == "" {
		return Match{}, false
	}
	return Match{Name: withResolution(safe, in.Resolution)}, true
}

func nameVanilla(in SpotlightInput) (Match, bool) {
	return Match{Name: in.RawFilename}, in.RawFilename != ""
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
