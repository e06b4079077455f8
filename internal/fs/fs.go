// Package fs provides the file operations the trash backends are built on
package fs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
)

// ErrCrossDevice is returned by Move when src and dst are on different
// devices and copying is not allowed
var ErrCrossDevice = errors.New("cross-device move not allowed")

// Create creates a new file with O_EXCL so that the name is reserved atomically.
// It returns an error if the file already exists.
func Create(path string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
}

// Move moves a file or directory from src to dst.
// When rename(2) fails because the paths are on different devices and
// fallbackCopy is true, it copies src to dst and removes src.
func Move(src, dst string, fallbackCopy bool) error {
	if _, err := os.Lstat(src); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("failed to move file: %w", err)
	}
	if !fallbackCopy {
		return fmt.Errorf("%w: %v", ErrCrossDevice, err)
	}

	slog.Debug("different devices detected, falling back to copy", "from", src, "to", dst)
	return copyAndDelete(src, dst)
}

// copyAndDelete copies src to dst and then deletes src
func copyAndDelete(src, dst string) error {
	opts := cp.Options{
		OnSymlink: func(string) cp.SymlinkAction {
			return cp.Shallow
		},
		PreserveTimes: true,
		Sync:          true,
	}
	if err := cp.Copy(src, dst, opts); err != nil {
		_ = os.RemoveAll(dst)
		return fmt.Errorf("failed to copy file: %w", err)
	}

	if err := os.RemoveAll(src); err != nil {
		// Keep a single copy of the file
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			return fmt.Errorf("failed to remove both source and destination: %v, %v", err, rmErr)
		}
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}

	return nil
}
