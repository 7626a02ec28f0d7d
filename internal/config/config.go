package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Sources  SourcesConfig  `yaml:"sources"`
	Play     PlayConfig     `yaml:"play"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type SourcesConfig struct {
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
}

// PlayConfig is the default start position for the play command.
type PlayConfig struct {
	Story   string `yaml:"story"`
	Chapter int    `yaml:"chapter"`
	Group   int    `yaml:"group"`
	Node    int    `yaml:"node"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if len(cfg.Sources.Paths) == 0 {
		return fmt.Errorf("at least one source path is required")
	}
	seen := make(map[string]struct{})
	for i, path := range cfg.Sources.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("source path %d is empty", i)
		}
		if _, exists := seen[path]; exists {
			return fmt.Errorf("duplicate source path: %s", path)
		}
		seen[path] = struct{}{}
	}
	return nil
}
