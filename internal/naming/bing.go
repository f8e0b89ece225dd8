package naming

import (
	"path"
	"strings"
)

// BingSourcePrefixes are documented prefixes stripped from Bing image ids.
var BingSourcePrefixes = []string{"OHR."}

const bingIDKey = "id="

// BingBaseID extracts the image id from a Bing urlbase such as
// "/th?id=OHR.MountainLake_EN-US1234567890": the token after the last "id="
// up to the first underscore, with any source prefix removed. The id is the
// same for every market that surfaces the image.
func BingBaseID(urlbase string) string {
	var token string
	if i := strings.LastIndex(urlbase, bingIDKey); i >= 0 {
		token = urlbase[i+len(bingIDKey):]
	} else if urlbase != "" {
		token = path.Base(urlbase)
	}
	token, _, _ = strings.Cut(token, "&")
	token, _, _ = strings.Cut(token, "_")
	for _, prefix := range BingSourcePrefixes {
		token = strings.TrimPrefix(token, prefix)
	}
	return Sanitize(token)
}

// BingName is the canonical file name for a Bing image at a resolution.
func BingName(baseID, resolution string) string {
	if baseID == "" {
		return ""
	}
	return withResolution(baseID, resolution)
}
