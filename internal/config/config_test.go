package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
backend_url = "https://backend.example/v2"
output_dir = "/var/exports"
snapshot_path = "/var/cache/conf.db"

[ui]
accent = "#FF8800"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.BackendURL != "https://backend.example/v2" {
		t.Errorf("backend_url = %q", cfg.BackendURL)
	}
	if cfg.GetOutputDir() != "/var/exports" {
		t.Errorf("output_dir = %q", cfg.GetOutputDir())
	}
	if cfg.GetSnapshotPath() != "/var/cache/conf.db" {
		t.Errorf("snapshot_path = %q", cfg.GetSnapshotPath())
	}
	if cfg.UI.Accent != "#FF8800" {
		t.Errorf("ui.accent = %q", cfg.UI.Accent)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("backend_url = ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.GetOutputDir() != "out" {
		t.Errorf("default output dir = %q", cfg.GetOutputDir())
	}
	if cfg.GetSnapshotPath() == "" {
		t.Error("default snapshot path should not be empty")
	}
}
