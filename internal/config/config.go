package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the scaffolding.json configuration file.
type Config struct {
	// Name is the target package namespace generated imports resolve against.
	Name    string       `json:"name"`
	Enabled *bool        `json:"enabled"`
	Engine  string       `json:"engine"`
	Bricks  BricksConfig `json:"bricks"`
	Include []string     `json:"include"`
	Exclude []string     `json:"exclude"`
	Dev     DevConfig    `json:"dev"`
}

// BricksConfig names the brick references used for generation.
type BricksConfig struct {
	// Feature is the brick materialized once per domain model.
	Feature string `json:"feature"`
	// Home is the brick for the index view aggregating all features.
	Home string `json:"home"`
}

// DevConfig contains watch-mode configuration.
type DevConfig struct {
	Watch   []string `json:"watch"`
	Exclude []string `json:"exclude"`
}

// IsEnabled reports whether generation is switched on. Absent means enabled.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// LoadConfig loads scaffolding.json from the current directory or a parent
// directory, returning the config and the project root it was found in.
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadConfigFromDir(dir)
}

// LoadConfigFromPath loads the configuration from a specific file.
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	if config.Name == "" {
		config.Name = "app"
	}
	if config.Engine == "" {
		config.Engine = "mason"
	}
	if config.Bricks.Feature == "" {
		config.Bricks.Feature = "scaffold"
	}
	if config.Bricks.Home == "" {
		config.Bricks.Home = "scaffold_home"
	}
	if len(config.Include) == 0 {
		config.Include = []string{"lib/*.dart"}
	}
	if len(config.Exclude) == 0 {
		config.Exclude = []string{"*.scaffold.dart"}
	}
	if len(config.Dev.Watch) == 0 {
		config.Dev.Watch = []string{"*.dart", "**/*.dart"}
	}
	if len(config.Dev.Exclude) == 0 {
		config.Dev.Exclude = []string{"*.scaffold.dart", ".git", "build"}
	}

	return &config, nil
}

// loadConfigFromDir searches for scaffolding.json in the given directory and
// its parents.
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, "scaffolding.json")
		if _, err := os.Stat(configPath); err == nil {
			config, err := LoadConfigFromPath(configPath)
			if err != nil {
				return nil, "", err
			}
			return config, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", fmt.Errorf("no scaffolding.json found in %s or any parent directory", startDir)
}
