// Package log builds slog loggers backed by charmbracelet/log
package log

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

var (
	defaultStylesOnce sync.Once
	defaultStyles     atomic.Pointer[Styles]
)

// DefaultStyles returns the shared level styles
func DefaultStyles() *Styles {
	defaultStylesOnce.Do(func() {
		defaultStyles.Store(newStyles())
	})
	return defaultStyles.Load()
}

// New creates a new logger with the given options
func New(opts ...Option) *slog.Logger {
	o := DefaultOptions()
	o.Apply(opts...)

	if o.OutputFunc != nil {
		if w, err := o.OutputFunc(); err == nil {
			o.Writer = w
		}
	}

	handler := charmlog.NewWithOptions(o.Writer, o.Options)
	handler.SetStyles(o.Styles)

	logger := slog.New(handler)
	if o.Default {
		charmlog.SetDefault(handler)
		slog.SetDefault(logger)
	}

	return logger
}

// Discard returns a logger that drops everything.
// It is installed when logging is disabled in the config.
func Discard() *slog.Logger {
	return New(UseOutput(io.Discard))
}
