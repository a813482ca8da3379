package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for a surprisal run.
type Config struct {
	Root        string `yaml:"root"`         // corpus root directory
	TextDir     string `yaml:"text_dir"`     // event dump root (default: <root>/_txt)
	SurpriseDir string `yaml:"surprise_dir"` // surprise table root (default: <root>/_surprise)
	PlotsDir    string `yaml:"plots_dir"`    // plot root (default: <root>/_plots)
	DBPath      string `yaml:"db_path"`      // sqlite database (default: <root>/surprisal.db)
	Workers     int    `yaml:"workers"`      // parallel file workers (0 = all CPUs)
	Recursive   bool   `yaml:"recursive"`    // descend into style subfolders
	LogLevel    string `yaml:"log_level"`    // debug, info, warn, error
	ServeAddr   string `yaml:"serve_addr"`   // listen address for the results API
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		Recursive: true,
		LogLevel:  "info",
		ServeAddr: ":8080",
	}
}

// DefaultPath returns the default config file path (~/.surprisal/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".surprisal", "config.yaml"), nil
}

// LoadFromFile reads a config file on top of the defaults. A missing
// file is not an error; the defaults come back unchanged.
func LoadFromFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies SURPRISAL_* environment variables on top of
// the loaded config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SURPRISAL_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("SURPRISAL_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("SURPRISAL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SURPRISAL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

// Validate reports configuration values that cannot work.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative; got %d", c.Workers)
	}
	return nil
}

// TextRoot returns the directory that receives event dumps.
func (c Config) TextRoot() string {
	if c.TextDir != "" {
		return c.TextDir
	}
	return filepath.Join(c.Root, "_txt")
}

// SurpriseRoot returns the directory that receives surprise tables.
func (c Config) SurpriseRoot() string {
	if c.SurpriseDir != "" {
		return c.SurpriseDir
	}
	return filepath.Join(c.Root, "_surprise")
}

// PlotsRoot returns the directory that receives rendered plots.
func (c Config) PlotsRoot() string {
	if c.PlotsDir != "" {
		return c.PlotsDir
	}
	return filepath.Join(c.Root, "_plots")
}

// DatabasePath returns the sqlite database location.
func (c Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.Root, "surprisal.db")
}
