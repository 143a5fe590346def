package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEngineConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadEngineConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadEngineConfig failed: %v", err)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Errorf("Unexpected default model: %q", cfg.Model)
	}
	if cfg.SearchCooldown() != 32*time.Second {
		t.Errorf("Unexpected default cooldown: %v", cfg.SearchCooldown())
	}
	if len(cfg.DefaultStores) == 0 {
		t.Error("Default store list should not be empty")
	}
}

func TestLoadEngineConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("model: gemini-x\nsearch_cooldown_ms: 1500\ngeocoder: nominatim\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig failed: %v", err)
	}
	if cfg.Model != "gemini-x" {
		t.Errorf("Override not applied: %q", cfg.Model)
	}
	if cfg.SearchCooldown() != 1500*time.Millisecond {
		t.Errorf("Unexpected cooldown: %v", cfg.SearchCooldown())
	}
	// Untouched keys keep their defaults.
	if cfg.ElevatedCooldown() != time.Second {
		t.Errorf("Unexpected elevated cooldown: %v", cfg.ElevatedCooldown())
	}
	if cfg.Geocoder != "nominatim" {
		t.Errorf("Unexpected geocoder: %q", cfg.Geocoder)
	}
}

func TestLoadEngineConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadEngineConfig(path); err == nil {
		t.Fatal("Expected an error for unparseable YAML")
	}
}
