package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

// Config is the root configuration for both the scanner and the test runner.
type Config struct {
	Logger  Logger  `yaml:"logger"`
	Scanner Scanner `yaml:"scanner"`
	Reports Reports `yaml:"reports"`
	Tests   Tests   `yaml:"tests"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type Scanner struct {
	EnabledRules []string      `yaml:"enabled_rules"`
	MinSeverity  string        `yaml:"min_severity"`
	ExcludePaths []string      `yaml:"exclude_paths"`
	Timeout      time.Duration `yaml:"timeout"`
	Threads      int           `yaml:"threads"`
}

type Reports struct {
	OutputDir string `yaml:"output_dir"`
}

type Tests struct {
	DefaultCategory string `yaml:"default_category"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Logger: Logger{Level: "info"},
		Scanner: Scanner{
			MinSeverity: "medium",
			Timeout:     5 * time.Minute,
			Threads:     4,
		},
		Reports: Reports{OutputDir: "reports"},
		Tests:   Tests{DefaultCategory: "all"},
	}
}

// ValidateConfigPath checks that the path exists and is a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the config file at configPath. An explicitly named file
// that is missing or malformed is a fatal ConfigurationError; an empty path
// returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}

	cfg := Default()
	if err := LoadYAML(configPath, cfg); err != nil {
		return nil, sgerrors.NewConfigurationError(configPath, err)
	}

	return cfg, nil
}
