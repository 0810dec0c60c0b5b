// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
database:
  path: "./test.db"

session:
  path: "./session"

logging:
  level: "debug"
  format: "json"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(configPath, tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "./test.db" {
		t.Errorf("unexpected database path: %s", cfg.Database.Path)
	}
	if cfg.Session.Path != "./session" {
		t.Errorf("unexpected session path: %s", cfg.Session.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected log level: %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("unexpected log format: %s", cfg.Logging.Format)
	}
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Only the database path is set; everything else should default
	configContent := `
database:
  path: "./only.db"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(configPath, tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "./only.db" {
		t.Errorf("unexpected database path: %s", cfg.Database.Path)
	}
	if cfg.Session.Path != filepath.Join(tmpDir, "session") {
		t.Errorf("session path did not default: %s", cfg.Session.Path)
	}
	if cfg.Media.Dir != filepath.Join(tmpDir, "media") {
		t.Errorf("media dir did not default: %s", cfg.Media.Dir)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level did not default: %s", cfg.Logging.Level)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("MESSENGER_DB_PATH", "/custom/messenger.db")

	configContent := `
database:
  path: "${MESSENGER_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(configPath, tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/custom/messenger.db" {
		t.Errorf("env var not expanded: %s", cfg.Database.Path)
	}
}

func TestLoad_InvalidFormat(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  format: "xml"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := Load(configPath, tmpDir)
	if err == nil {
		t.Fatal("expected validation error for bad logging format")
	}
	if !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml", "/tmp")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/data")

	if cfg.Database.Path != filepath.Join("/data", "messenger.db") {
		t.Errorf("unexpected default db path: %s", cfg.Database.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}
