package images

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"github.com/docker/go-units"
	"github.com/gobwas/glob"
	"github.com/samber/lo"
)

// Filterable defines what an item must expose to be filtered
type Filterable interface {
	// GetName returns the base name of the file
	GetName() string
	// GetPath returns the full path of the file
	GetPath() string
	// GetSize returns the size of the file in bytes
	GetSize() int64
}

// FilterOptions holds the exclusion rules applied after listing
type FilterOptions struct {
	// Files are exact base names to drop (e.g. ".DS_Store")
	Files []string
	// Patterns are regular expressions matched against the base name
	Patterns []string
	// Globs are glob patterns matched against the base name
	Globs []string
	// MinSize and MaxSize are human readable bounds such as "10KB"; empty means unbounded
	MinSize string
	MaxSize string
}

// IsZero reports whether the options exclude nothing
func (o FilterOptions) IsZero() bool {
	return len(o.Files) == 0 && len(o.Patterns) == 0 && len(o.Globs) == 0 &&
		o.MinSize == "" && o.MaxSize == ""
}

// Validate checks that every pattern, glob and size bound can be parsed
func (o FilterOptions) Validate() error {
	for _, p := range o.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	for _, g := range o.Globs {
		if _, err := glob.Compile(g); err != nil {
			return fmt.Errorf("invalid glob %q: %w", g, err)
		}
	}
	for _, s := range []string{o.MinSize, o.MaxSize} {
		if s == "" {
			continue
		}
		if _, err := units.FromHumanSize(s); err != nil {
			return fmt.Errorf("invalid size %q: %w", s, err)
		}
	}
	return nil
}

// Filter applies the exclusion rules to items, keeping their order
func Filter[T Filterable](items []T, opts FilterOptions) []T {
	if opts.IsZero() {
		return items
	}

	items = rejectByNames(items, opts.Files)
	items = rejectByPatterns(items, opts.Patterns)
	items = rejectByGlobs(items, opts.Globs)
	items = rejectBySize(items, opts.MinSize, opts.MaxSize)

	return items
}

func rejectByNames[T Filterable](items []T, names []string) []T {
	if len(names) == 0 {
		return items
	}
	return lo.Reject(items, func(item T, _ int) bool {
		return slices.Contains(names, item.GetName())
	})
}

func rejectByPatterns[T Filterable](items []T, patterns []string) []T {
	if len(patterns) == 0 {
		return items
	}

	var res []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			slog.Warn("skipped invalid pattern", "pattern", p, "error", err)
			continue
		}
		res = append(res, re)
	}

	return lo.Reject(items, func(item T, _ int) bool {
		return lo.SomeBy(res, func(re *regexp.Regexp) bool {
			return re.MatchString(item.GetName())
		})
	})
}

func rejectByGlobs[T Filterable](items []T, globs []string) []T {
	if len(globs) == 0 {
		return items
	}

	var gs []glob.Glob
	for _, g := range globs {
		compiled, err := glob.Compile(g)
		if err != nil {
			slog.Warn("skipped invalid glob", "glob", g, "error", err)
			continue
		}
		gs = append(gs, compiled)
	}

	return lo.Reject(items, func(item T, _ int) bool {
		return lo.SomeBy(gs, func(g glob.Glob) bool {
			return g.Match(item.GetName())
		})
	})
}

func rejectBySize[T Filterable](items []T, minSize, maxSize string) []T {
	lower, hasMin := parseSize(minSize)
	upper, hasMax := parseSize(maxSize)
	if !hasMin && !hasMax {
		return items
	}

	return lo.Filter(items, func(item T, _ int) bool {
		size := item.GetSize()
		if hasMin && size < lower {
			return false
		}
		if hasMax && size > upper {
			return false
		}
		return true
	})
}

func parseSize(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := units.FromHumanSize(s)
	if err != nil {
		slog.Warn("skipped invalid size", "size", s, "error", err)
		return 0, false
	}
	return n, true
}
