// Package config loads driver settings from calc.toml or calc.yaml. The
// core packages never read configuration; only cmd/calc does, and every
// field has a default so running without a file works.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that overrides config discovery.
const EnvVar = "CALC_CONFIG"

// defaultPaths are probed in order when no explicit path is given.
var defaultPaths = []string{"calc.toml", "calc.yaml", "calc.yml"}

// Config holds the complete driver configuration.
type Config struct {
	Log    LogConfig    `toml:"log" yaml:"log"`
	Output OutputConfig `toml:"output" yaml:"output"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// OutputConfig holds diagnostic rendering settings.
type OutputConfig struct {
	Format string `toml:"format" yaml:"format"`
	Color  string `toml:"color" yaml:"color"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from an explicit path. The format follows the
// file extension: .yaml and .yml decode as YAML, everything else as TOML.
// A missing file is an error here; use Discover for optional files.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(content, path)
}

// Discover probes for a config file: first the CALC_CONFIG environment
// variable, then calc.toml, calc.yaml and calc.yml in the working
// directory. When nothing is found it returns defaults and an empty path.
func Discover() (*Config, string, error) {
	if path := os.Getenv(EnvVar); path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}

	for _, path := range defaultPaths {
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, path, err
		}
	}
	return Default(), "", nil
}

func decode(content []byte, path string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Output.Format == "" {
		c.Output.Format = "pretty"
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
}

// SlogLevel maps the configured level name onto log/slog's scale. Unknown
// names fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
