package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

var validSeverities = map[string]bool{
	"critical": true,
	"high":     true,
	"medium":   true,
}

var validCategories = map[string]bool{
	"all":         true,
	"syntax":      true,
	"unit":        true,
	"integration": true,
}

// ValidateConfig checks cross-field constraints after loading.
func ValidateConfig(cfg *Config) error {
	if cfg.Scanner.MinSeverity != "" && !validSeverities[cfg.Scanner.MinSeverity] {
		return sgerrors.NewConfigurationError("scanner.min_severity",
			fmt.Errorf("unknown severity %q", cfg.Scanner.MinSeverity))
	}
	if cfg.Scanner.Threads < 0 {
		return sgerrors.NewConfigurationError("scanner.threads",
			fmt.Errorf("must be non-negative, got %d", cfg.Scanner.Threads))
	}
	for _, pattern := range cfg.Scanner.ExcludePaths {
		if !doublestar.ValidatePattern(pattern) {
			return sgerrors.NewConfigurationError("scanner.exclude_paths",
				fmt.Errorf("invalid glob pattern %q", pattern))
		}
	}
	if cfg.Tests.DefaultCategory != "" && !validCategories[cfg.Tests.DefaultCategory] {
		return sgerrors.NewConfigurationError("tests.default_category",
			fmt.Errorf("unknown category %q", cfg.Tests.DefaultCategory))
	}
	return nil
}

// Excluded reports whether path matches any configured exclude pattern.
func (c *Config) Excluded(path string) bool {
	for _, pattern := range c.Scanner.ExcludePaths {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
