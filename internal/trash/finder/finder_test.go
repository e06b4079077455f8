package finder

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeOsascript writes a shell script standing in for osascript.
// The script receives "-e <script> <path>" like the real one.
func fakeOsascript(t *testing.T, body string) *Trash {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	bin := filepath.Join(t.TempDir(), "osascript")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return &Trash{osascript: bin}
}

func TestPut(t *testing.T) {
	trashDir := t.TempDir()
	tr := fakeOsascript(t, `mv "$3" "`+trashDir+`/"`)

	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, []byte("jpg"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := tr.Put(src); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still exists: %v", err)
	}
	if _, err := os.Stat(filepath.Join(trashDir, "photo.jpg")); err != nil {
		t.Errorf("file not in trash: %v", err)
	}
}

func TestPutScriptFailure(t *testing.T) {
	tr := fakeOsascript(t, `echo "execution error: Finder got an error (-1743)" >&2; exit 1`)

	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, []byte("jpg"), 0644); err != nil {
		t.Fatal(err)
	}

	err := tr.Put(src)
	if err == nil || !strings.Contains(err.Error(), "-1743") {
		t.Fatalf("Put() error = %v, want Finder message", err)
	}
}

func TestPutMissingFile(t *testing.T) {
	tr := fakeOsascript(t, `exit 0`)

	err := tr.Put(filepath.Join(t.TempDir(), "missing.jpg"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Put() error = %v, want not exist", err)
	}
}

func TestPutWithoutOsascript(t *testing.T) {
	tr := &Trash{osascript: filepath.Join(t.TempDir(), "no-such-osascript")}

	if err := tr.Put("photo.jpg"); err == nil || !strings.Contains(err.Error(), "osascript not available") {
		t.Fatalf("Put() error = %v", err)
	}
}
