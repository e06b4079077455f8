package log

import (
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type (
	Level     = charmlog.Level
	Styles    = charmlog.Styles
	Formatter = charmlog.Formatter
)

const (
	DebugLevel = charmlog.DebugLevel
	InfoLevel  = charmlog.InfoLevel
	WarnLevel  = charmlog.WarnLevel
	ErrorLevel = charmlog.ErrorLevel
	FatalLevel = charmlog.FatalLevel
)

const (
	TextFormatter   = charmlog.TextFormatter
	JSONFormatter   = charmlog.JSONFormatter
	LogfmtFormatter = charmlog.LogfmtFormatter
)

// ParseLevel converts a level name found in the config file.
// An empty name is the info level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level: %q", s)
}

// ParseFormatter converts a format name found in the config file.
// An empty name is the text format.
func ParseFormatter(s string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return TextFormatter, nil
	case "json":
		return JSONFormatter, nil
	case "logfmt":
		return LogfmtFormatter, nil
	}
	return TextFormatter, fmt.Errorf("unknown log format: %q", s)
}
