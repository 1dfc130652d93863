package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig represents a .mvvmshift.yaml file in a repository
type ProjectConfig struct {
	Version string `yaml:"version"`

	// File patterns, matched against paths relative to the scan root
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	// Rule selection
	Rules RulesConfig `yaml:"rules,omitempty"`

	// Scan settings
	Scan ScanConfig `yaml:"scan,omitempty"`
}

// RulesConfig selects which rules run
type RulesConfig struct {
	// Disabled lists rule IDs to skip
	Disabled []string `yaml:"disabled,omitempty"`
}

// ScanConfig holds scan tuning
type ScanConfig struct {
	// Concurrent file scans; 0 means one per CPU
	Workers int `yaml:"workers,omitempty"`
}

// DefaultProjectConfig returns sensible defaults
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version: "1.0",
		Exclude: []string{
			"*.Designer.cs",
			"*.g.cs",
			"*.g.i.cs",
			"*.generated.cs",
		},
	}
}

// LoadProjectConfig loads a .mvvmshift.yaml from the given directory
func LoadProjectConfig(repoPath string) (*ProjectConfig, error) {
	configPath := filepath.Join(repoPath, ".mvvmshift.yaml")

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Also try .mvvmshift.yml
		configPath = filepath.Join(repoPath, ".mvvmshift.yml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return DefaultProjectConfig(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultProjectConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveProjectConfig saves the config to .mvvmshift.yaml
func SaveProjectConfig(repoPath string, cfg *ProjectConfig) error {
	configPath := filepath.Join(repoPath, ".mvvmshift.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Merge applies overrides from another config (e.g., CLI flags)
func (c *ProjectConfig) Merge(other *ProjectConfig) {
	if other == nil {
		return
	}

	if len(other.Include) > 0 {
		c.Include = other.Include
	}

	if len(other.Exclude) > 0 {
		c.Exclude = other.Exclude
	}

	if len(other.Rules.Disabled) > 0 {
		c.Rules.Disabled = other.Rules.Disabled
	}

	if other.Scan.Workers != 0 {
		c.Scan.Workers = other.Scan.Workers
	}
}

// EnabledRules filters the given rule IDs down to the ones the config
// leaves enabled. An empty result means every rule is disabled.
func (c *ProjectConfig) EnabledRules(all []string) []string {
	if len(c.Rules.Disabled) == 0 {
		return all
	}

	disabled := make(map[string]bool, len(c.Rules.Disabled))
	for _, id := range c.Rules.Disabled {
		disabled[id] = true
	}

	enabled := make([]string, 0, len(all))
	for _, id := range all {
		if !disabled[id] {
			enabled = append(enabled, id)
		}
	}
	return enabled
}
