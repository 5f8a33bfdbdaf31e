package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/deltae"
)

// Config represents the application configuration
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Matching MatchingConfig `yaml:"matching"`
	Batch    BatchConfig    `yaml:"batch"`
	Script   string         `yaml:"script"`

	// dir is the directory of the loaded file; relative paths resolve against it
	dir string
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  bool   `yaml:"colors"`
	UseJSON bool   `yaml:"json"`
}

// GetLevel returns the log level with default
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// CatalogConfig points at the option lists the catalogs are built from
type CatalogConfig struct {
	ColorOptions       string   `yaml:"color_options"`       // YAML/JSON list of {identifier, label}
	TemperatureOptions string   `yaml:"temperature_options"` // YAML/JSON list of {identifier, label}
	KnownValues        string   `yaml:"known_values"`        // Optional table merged over the built-in one
	AchromaticOffset   *float64 `yaml:"achromatic_offset"`   // Sort offset for grayscale colours (default: 42)
}

// GetAchromaticOffset returns the achromatic offset with default
func (c *CatalogConfig) GetAchromaticOffset() float64 {
	if c.AchromaticOffset == nil {
		return catalog.DefaultAchromaticOffset
	}
	return *c.AchromaticOffset
}

// MatchingConfig contains nearest-match settings
type MatchingConfig struct {
	Weights deltae.Weights `yaml:"weights"` // CIEDE2000 kL, kC, kH (default: 1, 1, 1)
}

// BatchConfig contains batch action settings
type BatchConfig struct {
	Workers int `yaml:"workers"` // Goroutines per batch (default: GOMAXPROCS)
}

// GetWorkers returns the worker count with default
func (c *BatchConfig) GetWorkers() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// EnvOverrides are COLORNAME_* environment variables applied over the file.
type EnvOverrides struct {
	LogLevel           string `envconfig:"LOG_LEVEL"`
	ColorOptions       string `envconfig:"COLOR_OPTIONS"`
	TemperatureOptions string `envconfig:"TEMPERATURE_OPTIONS"`
	KnownValues        string `envconfig:"KNOWN_VALUES"`
	Script             string `envconfig:"SCRIPT"`
}

// EnvPrefix prefixes every override variable.
const EnvPrefix = "colorname"

// applyEnv overrides settings from COLORNAME_* variables that are set.
func (c *Config) applyEnv() error {
	var env EnvOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	for _, o := range []struct {
		value string
		dst   *string
	}{
		{env.LogLevel, &c.Log.Level},
		{env.ColorOptions, &c.Catalog.ColorOptions},
		{env.TemperatureOptions, &c.Catalog.TemperatureOptions},
		{env.KnownValues, &c.Catalog.KnownValues},
		{env.Script, &c.Script},
	} {
		if o.value != "" {
			*o.dst = o.value
		}
	}
	return nil
}

// Default returns the configuration used when no file is given
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	// Missing weights mean the reference viewing condition
	if c.Matching.Weights.L == 0 {
		c.Matching.Weights.L = deltae.DefaultWeights.L
	}
	if c.Matching.Weights.C == 0 {
		c.Matching.Weights.C = deltae.DefaultWeights.C
	}
	if c.Matching.Weights.H == 0 {
		c.Matching.Weights.H = deltae.DefaultWeights.H
	}
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if err := c.Matching.Weights.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if off := c.Catalog.GetAchromaticOffset(); math.IsNaN(off) || math.IsInf(off, 0) {
		return fmt.Errorf("catalog: achromatic_offset must be finite, got %v", off)
	}
	return nil
}

// ResolvePath makes a path from the config file relative to the file's directory
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
