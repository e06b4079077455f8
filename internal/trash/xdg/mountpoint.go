//go:build !windows

package xdg

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/babarot/organizeimg/internal/trash/core"
	"github.com/moby/sys/mountinfo"
)

// mount describes the file system a path lives on
type mount struct {
	// topdir is the mount point
	topdir string

	// readOnly is set for file systems mounted with "ro"
	readOnly bool
}

// getMountPoint returns the mount holding the given path.
// path should already be free of symlinks.
func getMountPoint(path string) (mount, error) {
	mounts, err := mountinfo.GetMounts(mountinfo.ParentsFilter(path))
	if err != nil {
		return mount{}, fmt.Errorf("failed to get mount info: %w", err)
	}

	// Find the longest matching mount point
	var longest *mountinfo.Info
	for _, m := range mounts {
		if !isParent(m.Mountpoint, path) {
			continue
		}
		if longest == nil || len(m.Mountpoint) > len(longest.Mountpoint) {
			longest = m
		}
	}

	if longest == nil {
		// If no mount point found, the path must be on the root filesystem
		return mount{topdir: "/"}, nil
	}

	opts := strings.Split(longest.Options, ",")
	slog.Debug("found mount point", "path", path, "mountpoint", longest.Mountpoint, "fstype", longest.FSType)
	return mount{
		topdir:   longest.Mountpoint,
		readOnly: slices.Contains(opts, "ro"),
	}, nil
}

// isParent reports whether dir is path or one of its ancestors
func isParent(dir, path string) bool {
	return dir == "/" || path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

// isOnSameDevice checks if two existing paths are on the same device
func isOnSameDevice(path1, path2 string) (bool, error) {
	info1, err := os.Stat(path1)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path1, err)
	}

	info2, err := os.Stat(path2)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path2, err)
	}

	stat1, ok1 := info1.Sys().(*syscall.Stat_t)
	stat2, ok2 := info2.Sys().(*syscall.Stat_t)

	if !ok1 || !ok2 {
		return false, core.NewStorageError("check-device", "", fmt.Errorf("failed to get device information"))
	}

	slog.Debug("device comparison",
		"path1", path1, "dev1", stat1.Dev,
		"path2", path2, "dev2", stat2.Dev)

	return stat1.Dev == stat2.Dev, nil
}

// isValidExternalTrash checks if a directory is a valid trash directory according to the XDG spec
func isValidExternalTrash(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		slog.Debug("failed to stat trash directory", "path", path, "error", err)
		return false
	}

	// Must not be a symbolic link
	if info.Mode()&os.ModeSymlink != 0 {
		slog.Debug("is a symbolic link", "path", path)
		return false
	}

	if !info.IsDir() {
		slog.Debug("not a directory", "path", path)
		return false
	}

	// $topdir/.Trash must have the sticky bit; its $uid child is checked by the caller
	if filepath.Base(path) == ".Trash" && info.Mode()&os.ModeSticky == 0 {
		slog.Debug("missing sticky bit", "path", path)
		return false
	}

	return true
}

// createTrashDir creates a trash directory with its files and info subdirectories
func createTrashDir(path string) error {
	for _, dir := range []string{path, filepath.Join(path, "files"), filepath.Join(path, "info")} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	slog.Debug("created trash directory", "path", path)
	return nil
}
