package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/go-playground/validator/v10"
)

// validateSize accepts the sizes understood by the list filter and the
// log rotation (e.g., "10MB", "1.5 GB", "512")
func validateSize(fl validator.FieldLevel) bool {
	_, err := units.FromHumanSize(fl.Field().String())
	return err == nil
}

// validateDirPath accepts a path that is either missing or an existing
// directory. The stock "dirpath" tag rejects valid Windows paths such as
// "C:\Users\name\.dir\".
func validateDirPath(fl validator.FieldLevel) bool {
	path := strings.TrimSpace(fl.Field().String())
	if path == "" {
		return false
	}

	expanded, err := expandPath(path)
	if err != nil {
		return false
	}

	fi, err := os.Stat(expanded)
	switch {
	case err == nil:
		return fi.IsDir()
	case os.IsNotExist(err):
		return true
	default:
		return false
	}
}

// expandPath expands environment variables and "~" in paths
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	path = os.ExpandEnv(path)

	return filepath.Abs(path)
}
