package diskmanager

import (
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/tphakala/plasma-spotlight/internal/logger"
)

const bytesPerMB = 1024 * 1024

// FreeSpaceChecker refuses new downloads below a free-space floor.
type FreeSpaceChecker struct {
	minFreeBytes uint64
	usage        UsageFunc
	log          logger.Logger
}

// NewFreeSpaceChecker returns a checker requiring minFreeMB megabytes free.
// Zero disables the check.
func NewFreeSpaceChecker(minFreeMB uint64, log logger.Logger) *FreeSpaceChecker {
	if log == nil {
		log = logger.Global().Module("diskmanager")
	}
	return &FreeSpaceChecker{minFreeBytes: minFreeMB * bytesPerMB, log: log}
}

// HasSpace reports whether the filesystem holding dir has at least the floor free.
func (c *FreeSpaceChecker) HasSpace(dir string) (bool, error) {
	if c.minFreeBytes == 0 {
		return true, nil
	}
	usage := c.usage
	if usage == nil {
		usage = disk.Usage
	}
	info, err := detailedUsage(usage, dir)
	if err != nil {
		return false, err
	}
	if info.FreeBytes < c.minFreeBytes {
		c.log.Warn("Free space below threshold",
			logger.String("path", info.Path),
			logger.Uint64("free_mb", info.FreeBytes/bytesPerMB),
			logger.Uint64("min_free_mb", c.minFreeBytes/bytesPerMB))
		return false, nil
	}
	return true, nil
}
