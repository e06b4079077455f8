package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/babarot/organizeimg/internal/env"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	p := newParser()
	if err := p.validate.Struct(NewDefaultConfig()); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
	if !NewDefaultConfig().FilterOptions().IsZero() {
		t.Error("default config should not exclude anything")
	}
}

func TestParse(t *testing.T) {
	path := writeConfig(t, `
trash:
  home_fallback: false
  force_home_trash: true
list:
  exclude:
    files:
      - .DS_Store
    globs:
      - "*_thumb.*"
    size:
      min: 1KB
logging:
  level: debug
`)

	cfg, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Trash.HomeFallback {
		t.Error("trash.home_fallback = true, want false")
	}
	if !cfg.Trash.ForceHomeTrash {
		t.Error("trash.force_home_trash = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
	// untouched keys keep their defaults
	if !cfg.Logging.Enabled || cfg.Logging.Rotation.MaxSize != "10MB" {
		t.Errorf("logging defaults lost: %+v", cfg.Logging)
	}

	opts := cfg.FilterOptions()
	if len(opts.Files) != 1 || opts.Files[0] != ".DS_Store" {
		t.Errorf("FilterOptions().Files = %v", opts.Files)
	}
	if len(opts.Globs) != 1 || opts.Globs[0] != "*_thumb.*" {
		t.Errorf("FilterOptions().Globs = %v", opts.Globs)
	}
	if opts.MinSize != "1KB" || opts.MaxSize != "" {
		t.Errorf("FilterOptions() sizes = %q/%q", opts.MinSize, opts.MaxSize)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		contains string
	}{
		{
			name:     "bad size",
			contents: "list:\n  exclude:\n    size:\n      max: lots\n",
			contains: "max",
		},
		{
			name:     "bad level",
			contents: "logging:\n  level: loud\n",
			contains: "level",
		},
		{
			name:     "bad format",
			contents: "logging:\n  format: xml\n",
			contains: "format",
		},
		{
			name:     "bad pattern",
			contents: "list:\n  exclude:\n    patterns:\n      - \"(\"\n",
			contains: "list.exclude",
		},
		{
			name:     "negative max files",
			contents: "logging:\n  rotation:\n    max_files: -1\n",
			contains: "max_files",
		},
		{
			name:     "broken yaml",
			contents: "trash: [",
			contains: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(writeConfig(t, tt.contents))
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not mention %q", err, tt.contains)
			}
		})
	}
}

func TestParseMissingExplicitPath(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Parse() expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error does not wrap os.ErrNotExist: %v", err)
	}
	if !strings.Contains(err.Error(), "Example YAML file contents") {
		t.Errorf("error lacks example config: %v", err)
	}
}

func TestParseCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "organizeimg", "config.yaml")
	t.Setenv("ORGANIZEIMG_CONFIG_PATH", path)
	env.Load()
	t.Cleanup(env.Load)

	cfg, err := Parse("")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not created: %v", err)
	}
	if !cfg.Trash.HomeFallback || cfg.Logging.Rotation.MaxFiles != 3 {
		t.Errorf("unexpected config from default file: %+v", cfg)
	}
}

func TestTrashConfig(t *testing.T) {
	t.Setenv("PHOTO_TRASH", "/srv/trash")

	cfg := NewDefaultConfig()
	cfg.Trash.HomeTrashDir = "$PHOTO_TRASH/home"

	tc, err := cfg.TrashConfig()
	if err != nil {
		t.Fatalf("TrashConfig() error = %v", err)
	}
	want, _ := filepath.Abs("/srv/trash/home")
	if tc.HomeTrashDir != want {
		t.Errorf("HomeTrashDir = %q, want %q", tc.HomeTrashDir, want)
	}
	if !tc.HomeFallback || tc.ForceHomeTrash {
		t.Errorf("unexpected flags: %+v", tc)
	}
}

func TestValidateSizeAndDirPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		cfg   func(*Config)
		valid bool
	}{
		{"size 10MB", func(c *Config) { c.List.Exclude.Size.Max = "10MB" }, true},
		{"size lowercase", func(c *Config) { c.List.Exclude.Size.Min = "5kb" }, true},
		{"size bytes", func(c *Config) { c.List.Exclude.Size.Min = "512B" }, true},
		{"size no unit", func(c *Config) { c.List.Exclude.Size.Min = "512" }, true},
		{"size fraction", func(c *Config) { c.List.Exclude.Size.Max = "1.5MB" }, true},
		{"size spaced", func(c *Config) { c.Logging.Rotation.MaxSize = "10 MB" }, true},
		{"size word", func(c *Config) { c.List.Exclude.Size.Max = "lots" }, false},
		{"size negative", func(c *Config) { c.List.Exclude.Size.Min = "-1MB" }, false},
		{"rotation size empty", func(c *Config) { c.Logging.Rotation.MaxSize = "" }, false},
		{"dir missing", func(c *Config) { c.Trash.HomeTrashDir = filepath.Join(t.TempDir(), "new") }, true},
		{"dir is file", func(c *Config) { c.Trash.HomeTrashDir = file }, false},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.cfg(&cfg)
			err := p.validate.Struct(cfg)
			if (err == nil) != tt.valid {
				t.Errorf("valid = %v, want %v (err: %v)", err == nil, tt.valid, err)
			}
		})
	}
}
