//go:build !windows

package xdg

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/babarot/organizeimg/internal/fs"
	"github.com/babarot/organizeimg/internal/trash/core"
)

const (
	// According to XDG spec
	trashInfoHeader = "[Trash Info]"
	trashInfoExt    = ".trashinfo"
	timeFormat      = "2006-01-02T15:04:05"
)

// TrashInfo represents the contents of a .trashinfo file
type TrashInfo struct {
	// Path is the original path of the file, absolute or relative to MountRoot
	Path string

	// DeletionDate is when the file was moved to trash
	DeletionDate time.Time

	// MountRoot is the top directory of the device holding an external trash.
	// Empty for the home trash.
	MountRoot string
}

// NewInfo parses a TrashInfo from a reader
func NewInfo(r io.Reader) (*TrashInfo, error) {
	scanner := bufio.NewScanner(r)
	info := &TrashInfo{}
	var headerFound bool

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			headerFound = line == trashInfoHeader
			continue
		}

		// Keys outside the [Trash Info] group belong to other groups
		if !headerFound {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "Path":
			path, err := url.PathUnescape(strings.TrimSpace(value))
			if err != nil {
				return nil, core.NewStorageError("parse", "", fmt.Errorf("invalid Path encoding: %w", err))
			}
			info.Path = path

		case "DeletionDate":
			date, err := time.ParseInLocation(timeFormat, strings.TrimSpace(value), time.Local)
			if err != nil {
				return nil, core.NewStorageError("parse", "", fmt.Errorf("invalid DeletionDate format: %w", err))
			}
			info.DeletionDate = date
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading info file: %w", err)
	}

	if info.Path == "" {
		return nil, core.NewStorageError("parse", "", fmt.Errorf("missing Path field"))
	}
	if info.DeletionDate.IsZero() {
		return nil, core.NewStorageError("parse", "", fmt.Errorf("missing DeletionDate field"))
	}

	return info, nil
}

// AbsolutePath returns the original path, resolving a relative one against MountRoot
func (i *TrashInfo) AbsolutePath() string {
	if filepath.IsAbs(i.Path) || i.MountRoot == "" {
		return i.Path
	}
	return filepath.Join(i.MountRoot, i.Path)
}

// relativePath returns the path to store, relative to MountRoot when there is one
func (i *TrashInfo) relativePath() string {
	if i.MountRoot == "" || !filepath.IsAbs(i.Path) {
		return i.Path
	}

	rel, err := filepath.Rel(i.MountRoot, i.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return i.Path
	}
	return rel
}

// Bytes renders the .trashinfo contents
func (i *TrashInfo) Bytes() []byte {
	content := new(strings.Builder)
	fmt.Fprintln(content, trashInfoHeader)
	fmt.Fprintf(content, "Path=%s\n", encodeTrashPath(i.relativePath()))
	fmt.Fprintf(content, "DeletionDate=%s\n", i.DeletionDate.Format(timeFormat))
	return []byte(content.String())
}

// Create writes the trash info to path, failing with an os.ErrExist error
// if path is already taken. The exclusive create is what reserves a name
// in the trash.
func (i *TrashInfo) Create(path string) error {
	f, err := fs.Create(path, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(i.Bytes()); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write info file: %w", err)
	}

	return nil
}

// encodeTrashPath percent-encodes each path segment, keeping the slashes
func encodeTrashPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// loadTrashInfo loads and parses a .trashinfo file
func loadTrashInfo(path string) (*TrashInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open info file: %w", err)
	}
	defer f.Close()

	return NewInfo(f)
}
