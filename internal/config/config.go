package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port int
	Env  string

	// Database; empty disables scan history persistence
	DatabaseURL string

	// GitHub token for cloning private repositories
	GitHubToken string

	// Concurrent file scans; 0 means one per CPU
	ScanWorkers int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		GitHubToken: getEnv("GITHUB_TOKEN", ""),
		ScanWorkers: getEnvInt("SCAN_WORKERS", 0),
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.ScanWorkers < 0 {
		return fmt.Errorf("SCAN_WORKERS must not be negative, got %d", c.ScanWorkers)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
