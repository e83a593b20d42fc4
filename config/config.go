// Package config holds the benchmark configuration and its defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one benchmark invocation. It is immutable once a
// runner has been constructed from it.
type Config struct {
	Engine     string `yaml:"engine"`
	Runs       int    `yaml:"runs"`
	Depth      int    `yaml:"depth"`
	ClearCache bool   `yaml:"clear_cache"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: "./cli",
		Runs:   3,
		Depth:  10,
	}
}

// Load reads a YAML config file layered over the defaults. Fields the
// file omits keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Engine == "" {
		return fmt.Errorf("engine path must not be empty")
	}

	if c.Runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", c.Runs)
	}

	if c.Depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", c.Depth)
	}

	return nil
}
