// Package finder moves files to the macOS trash through Finder
package finder

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const script = `
on run argv
  tell application "Finder"
    repeat with f in argv
      move (f as POSIX file) to trash
    end repeat
  end tell
end run
`

// Trash implements core.Backend by asking Finder to move files
type Trash struct {
	// osascript is the command used to run the AppleScript
	osascript string
}

// New returns a Finder backend
func New() *Trash {
	return &Trash{osascript: "osascript"}
}

// Name implements core.Backend
func (t *Trash) Name() string {
	return "finder"
}

// Put moves the file at path to the trash
func (t *Trash) Put(path string) error {
	bin, err := exec.LookPath(t.osascript)
	if err != nil {
		return fmt.Errorf("osascript not available: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(abs); err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := exec.Command(bin, "-e", script, abs)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errors.New(msg)
		}
		return err
	}

	slog.Info("moved to trash", "path", abs, "backend", t.Name())
	return nil
}
