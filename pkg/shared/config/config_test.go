package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "medium", cfg.Scanner.MinSeverity)
	assert.Equal(t, 5*time.Minute, cfg.Scanner.Timeout)
	assert.Equal(t, 4, cfg.Scanner.Threads)
	assert.Equal(t, "reports", cfg.Reports.OutputDir)
	assert.Equal(t, "all", cfg.Tests.DefaultCategory)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := t.TempDir() + "/config.yml"
	content := `logger:
  level: debug
scanner:
  min_severity: high
  enabled_rules: [SG001, SG003]
  exclude_paths: ["vendor/**"]
  threads: 2
reports:
  output_dir: out
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "high", cfg.Scanner.MinSeverity)
	assert.Equal(t, []string{"SG001", "SG003"}, cfg.Scanner.EnabledRules)
	assert.Equal(t, 2, cfg.Scanner.Threads)
	assert.Equal(t, "out", cfg.Reports.OutputDir)
	// Unset fields keep their defaults.
	assert.Equal(t, 5*time.Minute, cfg.Scanner.Timeout)
	assert.Equal(t, "all", cfg.Tests.DefaultCategory)
}

func TestLoadConfigMissingFileIsFatal(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yml")
	var confErr *sgerrors.ConfigurationError
	require.True(t, errors.As(err, &confErr))
	assert.Equal(t, "/does/not/exist.yml", confErr.Path)
}

func TestLoadConfigMalformedFileIsFatal(t *testing.T) {
	path := t.TempDir() + "/config.yml"
	require.NoError(t, os.WriteFile(path, []byte("scanner: [not a map"), 0o644))

	_, err := LoadConfig(path)
	var confErr *sgerrors.ConfigurationError
	assert.True(t, errors.As(err, &confErr))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(*Config) {}, true},
		{"unknown severity", func(c *Config) { c.Scanner.MinSeverity = "cosmic" }, false},
		{"negative threads", func(c *Config) { c.Scanner.Threads = -1 }, false},
		{"bad glob", func(c *Config) { c.Scanner.ExcludePaths = []string{"[unclosed"} }, false},
		{"unknown category", func(c *Config) { c.Tests.DefaultCategory = "smoke" }, false},
		{"valid excludes", func(c *Config) { c.Scanner.ExcludePaths = []string{"vendor/**", "**/*.tmp.ps1"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestExcluded(t *testing.T) {
	cfg := Default()
	cfg.Scanner.ExcludePaths = []string{"vendor/**", "**/legacy/*.ps1"}

	assert.True(t, cfg.Excluded("vendor/tool/setup.ps1"))
	assert.True(t, cfg.Excluded("scripts/legacy/old.ps1"))
	assert.False(t, cfg.Excluded("scripts/deploy.ps1"))
	assert.False(t, Default().Excluded("vendor/tool/setup.ps1"))
}
