// Package naming derives canonical, filesystem-safe file names for feed images.
//
// Names are pure functions of the upstream record: the same image always maps
// to the same name, so an existing file at that name means the image was
// already fetched.
package naming

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const jpgExt = ".jpg"

var resolutionPattern = regexp.MustCompile(`^\d+x\d+$`)

// RawFilename returns the last path segment of an asset URL without query or fragment.
func RawFilename(assetURL string) string {
	s := assetURL
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return path.Base(strings.TrimRight(s, "/"))
}

// ParseResolution returns the WIDTHxHEIGHT token from the last underscore
// segment of the asset's file name, or "" when there is none.
func ParseResolution(assetURL string) string {
	raw := RawFilename(assetURL)
	i := strings.LastIndex(raw, "_")
	if i < 0 {
		return ""
	}
	token := strings.TrimSuffix(raw[i+1:], path.Ext(raw))
	if !resolutionPattern.MatchString(token) {
		return ""
	}
	return token
}

// withResolution appends "_<res>.jpg", or just ".jpg" when res is unknown.
func withResolution(name, res string) string {
	if res == "" {
		return name + jpgExt
	}
	return name + "_" + res + jpgExt
}

// Sanitize makes name safe to join onto a destination directory. It returns
// "" when nothing usable is left.
func Sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}

// fallbackName is a stable name for records that yield nothing usable.
func fallbackName(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String() + jpgExt
}
