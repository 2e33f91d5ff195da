// Package config holds the run settings of meants: where wb_command lives,
// where scratch files go, and how the logger is set up.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g. MEANTS_WB_COMMAND
const EnvPrefix = "MEANTS"

type Config struct {
	WBCommand string        `yaml:"wb_command" envconfig:"WB_COMMAND"`
	TempDir   string        `yaml:"temp_dir" envconfig:"TEMP_DIR"`
	KeepTemp  bool          `yaml:"keep_temp" envconfig:"KEEP_TEMP"`
	Logging   LoggingConfig `yaml:"logging" envconfig:"LOG"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		WBCommand: "wb_command",
		TempDir:   os.TempDir(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load layers the YAML file at path (skipped when empty) and then the
// MEANTS_ environment over the defaults, and validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// unset variables leave the file and default values in place
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the fields that cannot be defaulted at use
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WBCommand) == "" {
		return fmt.Errorf("wb_command path must not be empty")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}

	return nil
}
