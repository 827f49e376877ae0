package config

import "os"

// IsDebug reads the raw environment rather than a parsed config because
// the logger needs it before any config struct exists.
func IsDebug() bool {
	return os.Getenv("DRAM_DEBUG") == "1"
}
