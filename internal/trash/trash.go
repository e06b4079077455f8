// Package trash moves files to the trash of the operating system
package trash

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/babarot/organizeimg/internal/trash/core"
)

// Mover sends files to a platform trash backend
type Mover struct {
	backend core.Backend
}

// NewMover returns a Mover delegating to the given backend
func NewMover(b core.Backend) *Mover {
	return &Mover{backend: b}
}

// New returns a Mover for the trash of the running platform
func New(cfg core.Config) (*Mover, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	b, err := newBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize trash backend: %w", err)
	}
	slog.Debug("trash backend set", "backend", b.Name())

	return NewMover(b), nil
}

// Backend returns the backend in use
func (m *Mover) Backend() core.Backend {
	return m.backend
}

// Trash moves the file at path to the trash. The path is not checked
// beforehand; whatever the backend reports is returned as an *Error.
func (m *Mover) Trash(path string) error {
	slog.Debug("trash started", "path", path, "backend", m.backend.Name())

	if err := m.backend.Put(path); err != nil {
		slog.Error("trash failed", "path", path, "error", err)
		return &Error{Path: path, Err: err}
	}

	return nil
}

var defaultMover = sync.OnceValues(func() (*Mover, error) {
	return New(core.NewDefaultConfig())
})

// Default returns the process-wide Mover built from the default
// configuration. It is created on first use.
func Default() (*Mover, error) {
	return defaultMover()
}

// Trash moves the file at path to the trash using the default configuration
func Trash(path string) error {
	return trashWith(Default, path)
}

func trashWith(mover func() (*Mover, error), path string) error {
	m, err := mover()
	if err != nil {
		return &Error{Path: path, Err: err}
	}
	return m.Trash(path)
}
