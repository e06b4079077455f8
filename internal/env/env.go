// Package env resolves the file locations organizeimg uses
package env

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "organizeimg"

var (
	// ORGANIZEIMG_CONFIG_PATH is the default config file location
	ORGANIZEIMG_CONFIG_PATH string

	// ORGANIZEIMG_LOG_PATH is the log file location
	ORGANIZEIMG_LOG_PATH string

	// ORGANIZEIMG_DEBUG mirrors the logs to stderr when set
	ORGANIZEIMG_DEBUG bool
)

func init() {
	// https://github.com/charmbracelet/log/issues/35
	os.Setenv("CLICOLOR_FORCE", "1")

	Load()
}

// Load resolves the locations again from the environment
func Load() {
	// Follow https://specifications.freedesktop.org/basedir-spec/latest/
	xdg.Reload()

	ORGANIZEIMG_CONFIG_PATH = lookup("ORGANIZEIMG_CONFIG_PATH", xdg.ConfigHome, "config.yaml")
	ORGANIZEIMG_LOG_PATH = lookup("ORGANIZEIMG_LOG_PATH", xdg.DataHome, "debug.log")
	ORGANIZEIMG_DEBUG = os.Getenv("ORGANIZEIMG_DEBUG") != ""
}

func lookup(key, base, file string) string {
	if e := os.Getenv(key); e != "" {
		return e
	}
	return filepath.Join(base, appName, file)
}
