package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/babarot/organizeimg/internal/env"
	"github.com/babarot/organizeimg/internal/images"
	"github.com/babarot/organizeimg/internal/trash/core"
	"github.com/go-playground/validator/v10"
	"github.com/muesli/reflow/indent"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Trash   Trash   `yaml:"trash"`
	List    List    `yaml:"list"`
	Logging Logging `yaml:"logging"`
}

type Trash struct {
	// HomeTrashDir overrides $XDG_DATA_HOME/Trash (freedesktop platforms only)
	HomeTrashDir   string `yaml:"home_trash_dir" validate:"omitempty,validDirPath"`
	HomeFallback   bool   `yaml:"home_fallback"`
	ForceHomeTrash bool   `yaml:"force_home_trash"`
}

type List struct {
	Exclude Exclude `yaml:"exclude"`
}

type Exclude struct {
	Files    []string `yaml:"files"`
	Patterns []string `yaml:"patterns"`
	Globs    []string `yaml:"globs"`
	Size     Size     `yaml:"size"`
}

type Size struct {
	Min string `yaml:"min" validate:"omitempty,validSize"`
	Max string `yaml:"max" validate:"omitempty,validSize"`
}

type Logging struct {
	Enabled  bool     `yaml:"enabled"`
	Level    string   `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format   string   `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
	Rotation Rotation `yaml:"rotation"`
}

type Rotation struct {
	MaxSize  string `yaml:"max_size" validate:"required,validSize"`
	MaxFiles int    `yaml:"max_files" validate:"gte=0"`
}

// TrashConfig converts the trash section for the trash backends
func (c Config) TrashConfig() (core.Config, error) {
	cfg := core.Config{
		HomeFallback:   c.Trash.HomeFallback,
		ForceHomeTrash: c.Trash.ForceHomeTrash,
	}
	if c.Trash.HomeTrashDir != "" {
		dir, err := expandPath(c.Trash.HomeTrashDir)
		if err != nil {
			return cfg, fmt.Errorf("home_trash_dir: %w", err)
		}
		cfg.HomeTrashDir = dir
	}
	return cfg, nil
}

// FilterOptions converts the list.exclude section for images.Filter
func (c Config) FilterOptions() images.FilterOptions {
	return images.FilterOptions{
		Files:    c.List.Exclude.Files,
		Patterns: c.List.Exclude.Patterns,
		Globs:    c.List.Exclude.Globs,
		MinSize:  c.List.Exclude.Size.Min,
		MaxSize:  c.List.Exclude.Size.Max,
	}
}

type configError struct {
	configPath string
	parser     parser
	err        error
}

func (e configError) Error() string {
	return heredoc.Docf(`
		Couldn't load the "%s" config file.
		Please try again after creating it or specifying a valid config path.
		The recommended config path is %s (default).
		Example YAML file contents:
		---
		%s
		---
		Original error:
		%s
		`,
		e.configPath,
		env.ORGANIZEIMG_CONFIG_PATH,
		e.parser.defaultConfigContents(),
		indent.String(e.err.Error(), 2),
	)
}

func (e configError) Unwrap() error {
	return e.err
}

type parsingError struct {
	err error
}

func (e parsingError) Error() string {
	return fmt.Sprintf("failed to parse config: %v", e.err)
}

func (e parsingError) Unwrap() error {
	return e.err
}

type parser struct {
	validate *validator.Validate
}

func newParser() parser {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.Split(fld.Tag.Get("yaml"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("validSize", validateSize)
	_ = validate.RegisterValidation("validDirPath", validateDirPath)

	return parser{validate: validate}
}

func (p parser) defaultConfigContents() string {
	content, _ := yaml.Marshal(NewDefaultConfig())
	return string(content)
}

// ensureConfigFile writes the default config to path unless a file is
// already there
func (p parser) ensureConfigFile(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		slog.Warn("creating directory as it does not exist", "dir", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	slog.Warn("creating config file as it does not exist", "config-file", path)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	_, err = f.WriteString(p.defaultConfigContents())
	return err
}

func (p parser) readConfigFile(path string) (Config, error) {
	// missing keys keep their default values
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, configError{configPath: path, parser: p, err: err}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, configError{configPath: path, parser: p, err: err}
	}

	if err := p.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return cfg, fmt.Errorf("validation error: field %s, %q is invalid", verrs[0].Namespace(), verrs[0].Value())
		}
		return cfg, err
	}

	if err := cfg.FilterOptions().Validate(); err != nil {
		return cfg, fmt.Errorf("validation error: list.exclude: %w", err)
	}

	return cfg, nil
}

// Parse loads the config file at path. An empty path means the default
// location, where a config file with default values is created on first run.
func Parse(path string) (Config, error) {
	p := newParser()

	configPath := path
	if configPath == "" {
		configPath = env.ORGANIZEIMG_CONFIG_PATH
		if err := p.ensureConfigFile(configPath); err != nil {
			return NewDefaultConfig(), parsingError{err: configError{configPath: configPath, parser: p, err: err}}
		}
	}
	slog.Debug("config file found", "config-file", configPath)

	cfg, err := p.readConfigFile(configPath)
	if err != nil {
		return cfg, parsingError{err: err}
	}

	return cfg, nil
}
