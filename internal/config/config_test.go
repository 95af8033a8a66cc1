package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, expected %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, expected %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.JWT.ExpireHour != 24 {
		t.Errorf("JWT.ExpireHour = %d, expected 24", cfg.JWT.ExpireHour)
	}
	if cfg.Viewer.PageSize != 50 {
		t.Errorf("Viewer.PageSize = %d, expected 50", cfg.Viewer.PageSize)
	}
}

func TestLoad_FromFile(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: "9090"
  mode: "release"
database:
  driver: "mysql"
  dsn: "user:pass@tcp(localhost:3306)/logs"
ingest:
  token: "file-token"
viewer:
  page_size: 25
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, expected %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, expected %q", cfg.Server.Port, "9090")
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Database.Driver = %q, expected %q", cfg.Database.Driver, "mysql")
	}
	if cfg.Ingest.Token != "file-token" {
		t.Errorf("Ingest.Token = %q, expected %q", cfg.Ingest.Token, "file-token")
	}
	if cfg.Viewer.PageSize != 25 {
		t.Errorf("Viewer.PageSize = %d, expected 25", cfg.Viewer.PageSize)
	}
	// Unset sections fall back to defaults
	if cfg.JWT.ExpireHour != 24 {
		t.Errorf("JWT.ExpireHour = %d, expected fallback 24", cfg.JWT.ExpireHour)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, expected fallback %q", cfg.Log.Level, "info")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	content := `
server:
  port: "9090"
ingest:
  token: "file-token"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("INGEST_TOKEN", "env-token")
	t.Setenv("PAGE_SIZE", "10")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("Server.Port = %q, env should win over file", cfg.Server.Port)
	}
	if cfg.Ingest.Token != "env-token" {
		t.Errorf("Ingest.Token = %q, env should win over file", cfg.Ingest.Token)
	}
	if cfg.Viewer.PageSize != 10 {
		t.Errorf("Viewer.PageSize = %d, expected 10 from env", cfg.Viewer.PageSize)
	}
}

func TestLoad_InvalidEnvPageSizeIgnored(t *testing.T) {
	t.Setenv("PAGE_SIZE", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Viewer.PageSize != 50 {
		t.Errorf("Viewer.PageSize = %d, expected default 50 when env value is invalid", cfg.Viewer.PageSize)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not: valid"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}
