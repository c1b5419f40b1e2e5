// Package config provides configuration management for the application.
// It handles loading and validation of YAML configuration files for the
// analysis engine and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure
type Config struct {
	// Application settings
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		Debug   bool   `yaml:"debug"`
	} `yaml:"app"`

	// Logging configuration
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// Analysis engine settings
	Analysis struct {
		MaxPathDepth        int    `yaml:"max_path_depth"`
		ParallelWorkers     int    `yaml:"parallel_workers"`
		DefaultDistribution string `yaml:"default_distribution"`
		FailOnWarnings      bool   `yaml:"fail_on_warnings"`
	} `yaml:"analysis"`

	// Knowledge-base settings
	Knowledge struct {
		ExtraFiles []string `yaml:"extra_files"`
	} `yaml:"knowledge"`
}

// Load loads configuration from the specified file
func Load(configFile string) (*Config, error) {
	// Set default values
	config := &Config{}
	config.setDefaults()

	// Read configuration file
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadFromEnv loads configuration based on environment
func LoadFromEnv(env string) (*Config, error) {
	configFile := filepath.Join("configs", fmt.Sprintf("%s.yaml", env))
	return Load(configFile)
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() {
	c.App.Name = "license-compliance-copilot"
	c.App.Version = "1.0.0"
	c.App.Debug = false

	c.Logging.Level = "info"
	c.Logging.Format = "json"

	c.Analysis.MaxPathDepth = 3
	c.Analysis.ParallelWorkers = 4
	c.Analysis.DefaultDistribution = "binary"
	c.Analysis.FailOnWarnings = false
}

// Validate validates the configuration settings
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name cannot be empty")
	}

	if c.Analysis.MaxPathDepth <= 0 {
		return fmt.Errorf("analysis.max_path_depth must be positive")
	}

	if c.Analysis.ParallelWorkers <= 0 {
		return fmt.Errorf("analysis.parallel_workers must be positive")
	}

	validDistributions := map[string]bool{
		"internal": true, "binary": true, "source": true, "saas": true, "embedded": true,
	}
	if !validDistributions[c.Analysis.DefaultDistribution] {
		return fmt.Errorf("invalid analysis.default_distribution: %s", c.Analysis.DefaultDistribution)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	return nil
}
