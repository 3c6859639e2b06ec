// Package config loads the tool's yaml configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration.
type Config struct {
	// Outline documents the rules are compiled from.
	Files []string `yaml:"files"`

	// MarkerTag selects which subtrees to import; IgnoreTag skips entries.
	MarkerTag string `yaml:"marker_tag"`
	IgnoreTag string `yaml:"ignore_tag"`

	Database string `yaml:"database"`
	Addr     string `yaml:"addr"`

	// RefreshSchedule is a cron expression (or @every duration) for the
	// run daemon. Empty means one-shot.
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		MarkerTag: "elfeed",
		IgnoreTag: "ignore",
		Database:  filepath.Join(home, ".autotag", "autotag.db"),
		Addr:      ":8080",
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".autotag", "config.yaml")
}

// Load reads the config file at path, applying defaults for unset fields.
// A missing file yields the defaults without error; configured outline files
// are validated later, at compile time.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.MarkerTag == "" {
		cfg.MarkerTag = "elfeed"
	}
	if cfg.IgnoreTag == "" {
		cfg.IgnoreTag = "ignore"
	}
	if cfg.Database == "" {
		cfg.Database = Default().Database
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	return cfg, nil
}
