package config

// NewDefaultConfig creates a new Config with default values.
// Nothing is excluded from listings by default.
func NewDefaultConfig() Config {
	return Config{
		Trash: Trash{
			HomeFallback: true,
		},
		List: List{
			Exclude: Exclude{
				Files:    []string{},
				Patterns: []string{},
				Globs:    []string{},
			},
		},
		Logging: Logging{
			Enabled: true,
			Level:   "info",
			Format:  "text",
			Rotation: Rotation{
				MaxSize:  "10MB",
				MaxFiles: 3,
			},
		},
	}
}
