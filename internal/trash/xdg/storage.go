//go:build !windows

// Package xdg implements the freedesktop.org trash specification
package xdg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	basedir "github.com/adrg/xdg"
	"github.com/babarot/organizeimg/internal/fs"
	"github.com/babarot/organizeimg/internal/trash/core"
)

// maxNameAttempts bounds the search for a free name in a trash directory
const maxNameAttempts = 10000

// Storage implements core.Backend for the XDG trash specification
type Storage struct {
	// Home trash location (~/.local/share/Trash)
	homeTrash *trashLocation

	config core.Config
}

// trashLocation represents a single trash directory
type trashLocation struct {
	// Root directory (e.g., ~/.local/share/Trash or /media/disk/.Trash-1000)
	root string

	// Files directory (root/files)
	filesDir string

	// Info directory (root/info)
	infoDir string

	// topdir is the mount point an external trash belongs to; empty for the home trash
	topdir string
}

func newLocation(root, topdir string) *trashLocation {
	return &trashLocation{
		root:     root,
		filesDir: filepath.Join(root, "files"),
		infoDir:  filepath.Join(root, "info"),
		topdir:   topdir,
	}
}

func (l *trashLocation) isHome() bool {
	return l.topdir == ""
}

// NewStorage creates a new XDG-compliant trash storage
func NewStorage(cfg core.Config) (*Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	home, err := initHomeTrash(cfg.HomeTrashDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize home trash: %w", err)
	}

	return &Storage{homeTrash: home, config: cfg}, nil
}

// Name implements core.Backend
func (s *Storage) Name() string {
	return "xdg"
}

// Root returns the home trash directory
func (s *Storage) Root() string {
	return s.homeTrash.root
}

// Put moves the file at src into the trash of its device, writing the
// .trashinfo file before the move so that a crash never leaves an
// unidentifiable file in the trash.
func (s *Storage) Put(src string) error {
	abs, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(abs); err != nil {
		return err
	}

	// The trash root is resolved, so compare both spellings of the path
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return err
	}
	if s.inHomeTrash(abs) || s.inHomeTrash(filepath.Join(dir, filepath.Base(abs))) {
		return core.ErrTrashingTrash
	}

	loc, err := s.selectTrashLocation(abs)
	if err != nil {
		return core.NewStorageError("select trash", "", err)
	}

	info := &TrashInfo{
		Path:         abs,
		DeletionDate: time.Now(),
		MountRoot:    loc.topdir,
	}

	name, infoPath, err := loc.reserve(filepath.Base(abs), info)
	if err != nil {
		return err
	}

	dst := filepath.Join(loc.filesDir, name)
	if err := fs.Move(abs, dst, loc.isHome() && s.config.HomeFallback); err != nil {
		// No file, no info
		os.Remove(infoPath)
		return fmt.Errorf("failed to move file to trash: %w", err)
	}

	slog.Info("moved to trash", "path", abs, "trash", dst)
	return nil
}

func (s *Storage) inHomeTrash(path string) bool {
	root := s.homeTrash.root
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// reserve claims a free name in the trash by creating its .trashinfo file.
// It returns the chosen name and the path of the info file.
func (l *trashLocation) reserve(base string, info *TrashInfo) (string, string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}

	for counter := 0; counter < maxNameAttempts; counter++ {
		name := base
		if counter > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, counter, ext)
		}

		if _, err := os.Lstat(filepath.Join(l.filesDir, name)); !os.IsNotExist(err) {
			continue
		}

		infoPath := filepath.Join(l.infoDir, name+trashInfoExt)
		err := info.Create(infoPath)
		if err == nil {
			return name, infoPath, nil
		}
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return "", "", fmt.Errorf("failed to save trash info: %w", err)
	}

	return "", "", fmt.Errorf("no free name for %s in %s", base, l.filesDir)
}

func initHomeTrash(root string) (*trashLocation, error) {
	if root == "" {
		root = filepath.Join(basedir.DataHome, "Trash")
	}
	slog.Debug("initHomeTrash", "root", root)

	if err := createTrashDir(root); err != nil {
		return nil, err
	}

	// Device checks compare real paths
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home trash: %w", err)
	}

	return newLocation(resolved, ""), nil
}

// selectTrashLocation picks the trash directory for the file at path
func (s *Storage) selectTrashLocation(path string) (*trashLocation, error) {
	if s.config.ForceHomeTrash {
		return s.homeTrash, nil
	}

	// The parent decides the device: a symlink is trashed, not its target
	dir, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", filepath.Dir(path), err)
	}

	sameDevice, err := isOnSameDevice(dir, s.homeTrash.root)
	if err == nil && sameDevice {
		return s.homeTrash, nil
	}

	loc, err := externalTrash(dir)
	if err == nil {
		return loc, nil
	}
	slog.Debug("no usable external trash", "dir", dir, "error", err)

	if s.config.HomeFallback {
		return s.homeTrash, nil
	}

	return nil, core.ErrCrossDevice
}

// externalTrash returns the trash at the top directory of the device holding dir,
// preferring $topdir/.Trash/$uid over $topdir/.Trash-$uid
func externalTrash(dir string) (*trashLocation, error) {
	m, err := getMountPoint(dir)
	if err != nil {
		return nil, err
	}
	if m.readOnly {
		return nil, fmt.Errorf("%s is mounted read-only", m.topdir)
	}

	uid := os.Getuid()

	shared := filepath.Join(m.topdir, ".Trash")
	if isValidExternalTrash(shared) {
		root := filepath.Join(shared, strconv.Itoa(uid))
		err := createTrashDir(root)
		if err == nil {
			return newLocation(root, m.topdir), nil
		}
		slog.Debug("cannot use shared trash", "path", shared, "error", err)
	}

	root := filepath.Join(m.topdir, fmt.Sprintf(".Trash-%d", uid))
	if fi, err := os.Lstat(root); err == nil && (fi.Mode()&os.ModeSymlink != 0 || !fi.IsDir()) {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	if err := createTrashDir(root); err != nil {
		return nil, err
	}

	return newLocation(root, m.topdir), nil
}
