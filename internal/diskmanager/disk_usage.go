// Package diskmanager reports free space for the filesystems images are written to.
package diskmanager

import (
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/tphakala/plasma-spotlight/internal/errors"
)

// DiskSpaceInfo holds space figures for one filesystem.
type DiskSpaceInfo struct {
	Path       string
	TotalBytes uint64
	FreeBytes  uint64 // available to unprivileged users
	UsedBytes  uint64
}

// UsageFunc matches disk.Usage so tests can substitute it.
type UsageFunc func(path string) (*disk.UsageStat, error)

// detailedUsage returns space figures for the filesystem holding path.
// A path that does not exist yet is measured at its nearest existing parent.
func detailedUsage(usage UsageFunc, path string) (DiskSpaceInfo, error) {
	target := existingAncestor(path)
	stat, err := usage(target)
	if err != nil {
		return DiskSpaceInfo{}, errors.New(err).
			Component("diskmanager").
			Category(errors.CategoryDiskSpace).
			FileContext(target).
			Build()
	}
	return DiskSpaceInfo{
		Path:       target,
		TotalBytes: stat.Total,
		FreeBytes:  stat.Free,
		UsedBytes:  stat.Used,
	}, nil
}

func existingAncestor(path string) string {
	p := filepath.Clean(path)
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}
