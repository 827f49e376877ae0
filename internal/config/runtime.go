package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath locates the runtime directory before the .env file in
// it has been loaded, so it reads the raw environment. Relative paths
// anchor at the user's home directory.
func GetRuntimePath() string {
	path := os.Getenv("DRAM_RUNTIME_PATH")
	if path == "" {
		path = ".drambot"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
