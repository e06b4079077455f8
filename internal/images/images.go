// Package images finds the image files of a single directory
package images

import (
	"cmp"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"
)

// extensions lists the recognized image extensions, lower-cased and without the dot
var extensions = []string{"jpg", "jpeg", "png"}

// readBatch is the number of directory entries requested per ReadDir call
const readBatch = 256

// Entry represents one image file found in a directory
type Entry struct {
	// Path is the directory joined with the file name
	Path string `json:"path"`

	// Size is the size of the file in bytes
	Size int64 `json:"size"`
}

// GetName returns the base name of the file
func (e Entry) GetName() string {
	return filepath.Base(e.Path)
}

// GetPath returns the path of the file
func (e Entry) GetPath() string {
	return e.Path
}

// GetSize returns the size of the file in bytes
func (e Entry) GetSize() int64 {
	return e.Size
}

// Compare orders entries by path, then by size
func Compare(a, b Entry) int {
	if c := strings.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	return cmp.Compare(a.Size, b.Size)
}

// Extensions returns the recognized image extensions
func Extensions() []string {
	return slices.Clone(extensions)
}

// IsImage reports whether name carries one of the recognized extensions.
// The comparison ignores case.
func IsImage(name string) bool {
	ext := extension(name)
	if ext == "" || !utf8.ValidString(ext) {
		return false
	}
	return slices.Contains(extensions, strings.ToLower(ext))
}

// extension returns the extension of name without the dot.
// A leading dot does not start an extension, so ".png" has none.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i+1:]
}

// List returns the image files directly under dir, sorted by path and size.
//
// Entries that cannot be inspected are skipped, as are directories, special
// files, symlinks that do not resolve to a regular file, and files whose
// extension is not recognized. A valid directory without images yields an
// empty slice.
func List(dir string) ([]Entry, error) {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		slog.Debug("not a directory", "path", dir, "error", err)
		return nil, ErrInvalidDirectory
	}

	f, err := os.Open(dir)
	if err != nil {
		return nil, &ReadError{Path: dir, Err: err}
	}
	defer f.Close()

	images := []Entry{}
	read := 0
	for {
		entries, err := f.ReadDir(readBatch)
		read += len(entries)
		for _, entry := range entries {
			if image, ok := inspect(dir, entry); ok {
				images = append(images, image)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if read == 0 {
				return nil, &ReadError{Path: dir, Err: err}
			}
			slog.Warn("directory listing stopped early", "path", dir, "read", read, "error", err)
			break
		}
	}

	slices.SortFunc(images, Compare)
	slog.Debug("listed images", "path", dir, "entries", read, "images", len(images))
	return images, nil
}

// inspect turns a directory entry into an Entry when it is a recognized image
func inspect(dir string, entry os.DirEntry) (Entry, bool) {
	name := entry.Name()
	if !IsImage(name) {
		return Entry{}, false
	}

	path := filepath.Join(dir, name)

	// Stat follows symlinks, so a link to an image is listed as one
	fi, err := os.Stat(path)
	if err != nil {
		slog.Debug("skipped entry", "path", path, "error", err)
		return Entry{}, false
	}
	if !fi.Mode().IsRegular() {
		return Entry{}, false
	}

	return Entry{Path: path, Size: fi.Size()}, true
}
