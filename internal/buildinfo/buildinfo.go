// Package buildinfo holds build-time metadata stamped with -ldflags.
package buildinfo

import "fmt"

// Stamped by the build:
//
//	go build -ldflags "-X github.com/tphakala/plasma-spotlight/internal/buildinfo.Version=v1.2.0"
var (
	Version   = ""
	BuildDate = ""
)

const unknown = "unknown"

// Info is a snapshot of the stamped values.
type Info struct {
	Version   string
	BuildDate string
}

// Current returns the stamped values with blanks replaced.
func Current() Info {
	return Info{Version: orUnknown(Version), BuildDate: orUnknown(BuildDate)}
}

// String renders the version line printed by --version.
func (i Info) String() string {
	return fmt.Sprintf("%s (built %s)", i.Version, i.BuildDate)
}

// Release is the Sentry release name for app.
func (i Info) Release(app string) string {
	return app + "@" + i.Version
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
