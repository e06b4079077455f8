// Package core holds the types shared by the trash backends
package core

import (
	"fmt"
	"path/filepath"
)

// Config holds the configuration for the platform trash backends
type Config struct {
	// HomeTrashDir overrides the home trash directory
	// ($XDG_DATA_HOME/Trash by default). XDG backend only.
	HomeTrashDir string

	// HomeFallback copies files into the home trash when no trash
	// directory exists on their own device. XDG backend only.
	HomeFallback bool

	// ForceHomeTrash uses the home trash even for files on other devices.
	// XDG backend only.
	ForceHomeTrash bool
}

// NewDefaultConfig creates a new Config with default values
func NewDefaultConfig() Config {
	return Config{
		HomeFallback: true,
	}
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.HomeTrashDir != "" && !filepath.IsAbs(c.HomeTrashDir) {
		return fmt.Errorf("home trash directory must be an absolute path: %s", c.HomeTrashDir)
	}
	return nil
}
