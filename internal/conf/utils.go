package conf

import (
	"os"
	"path/filepath"
	"strings"
)

// GetDefaultConfigPaths returns the directories searched for config.{yaml,json,toml}.
func GetDefaultConfigPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, AppName))
	}
	paths = append(paths, filepath.Join("/etc", AppName))
	return paths
}

// DefaultConfigFile is where `config init` writes when no --config is given.
func DefaultConfigFile() string {
	return filepath.Join(GetDefaultConfigPaths()[0], "config.yaml")
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
