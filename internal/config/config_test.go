package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear relevant env vars to test defaults
	envVars := []string{"PORT", "ENV", "DATABASE_URL", "GITHUB_TOKEN", "SCAN_WORKERS"}
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Check defaults
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %s, want development", cfg.Env)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %s, want empty", cfg.DatabaseURL)
	}
	if cfg.GitHubToken != "" {
		t.Errorf("GitHubToken = %s, want empty", cfg.GitHubToken)
	}
	if cfg.ScanWorkers != 0 {
		t.Errorf("ScanWorkers = %d, want 0", cfg.ScanWorkers)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/mvvmshift")
	t.Setenv("GITHUB_TOKEN", "ghp_test_token")
	t.Setenv("SCAN_WORKERS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %s, want production", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user:pass@db:5432/mvvmshift" {
		t.Errorf("DatabaseURL = %s, want env value", cfg.DatabaseURL)
	}
	if cfg.GitHubToken != "ghp_test_token" {
		t.Errorf("GitHubToken = %s, want ghp_test_token", cfg.GitHubToken)
	}
	if cfg.ScanWorkers != 4 {
		t.Errorf("ScanWorkers = %d, want 4", cfg.ScanWorkers)
	}
}

func TestLoad_BadInt(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Unparseable values fall back to the default
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Port: 8080}, false},
		{"zero port", Config{Port: 0}, true},
		{"negative port", Config{Port: -1}, true},
		{"port too large", Config{Port: 70000}, true},
		{"negative workers", Config{Port: 8080, ScanWorkers: -2}, true},
		{"workers ok", Config{Port: 8080, ScanWorkers: 8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
