package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	origVersion, origDate := Version, BuildDate
	t.Cleanup(func() { Version, BuildDate = origVersion, origDate })

	Version, BuildDate = "", ""
	info := Current()
	assert.Equal(t, "unknown (built unknown)", info.String())

	Version, BuildDate = "v1.2.0", "2024-05-01"
	info = Current()
	assert.Equal(t, "v1.2.0 (built 2024-05-01)", info.String())
	assert.Equal(t, "plasma-spotlight@v1.2.0", info.Release("plasma-spotlight"))
}
