package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds infrastructure config from standard env vars
type AppConfig struct {
	DBPath     string
	ConfigPath string // Path to the YAML config file
	ListenAddr string
}

// EngineConfig holds pipeline tuning (from YAML). Every field has a
// sensible default so the file is optional.
type EngineConfig struct {
	Model              string   `yaml:"model"`
	GroundedModel      string   `yaml:"grounded_model"`
	SearchCooldownMS   int      `yaml:"search_cooldown_ms"`
	ElevatedCooldownMS int      `yaml:"elevated_cooldown_ms"`
	Geocoder           string   `yaml:"geocoder"` // "gemini" or "nominatim"
	DefaultStores      []string `yaml:"default_stores"`
}

// GetAppConfig reads basic infrastructure settings from environment variables.
func GetAppConfig() (AppConfig, error) {
	dbPath := os.Getenv("DB_PATH")
	configPath := os.Getenv("CONFIG_PATH")
	listenAddr := os.Getenv("LISTEN_ADDR")

	// Set defaults if not provided
	if dbPath == "" {
		dbPath = "./local-data/shopsync.db"
	}
	if configPath == "" {
		configPath = "config.yaml"
	}
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	return AppConfig{
		DBPath:     dbPath,
		ConfigPath: configPath,
		ListenAddr: listenAddr,
	}, nil
}

// DefaultEngineConfig mirrors the tuning the app shipped with: a long
// cooldown for the free request tier and a short one for elevated mode.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Model:              "gemini-2.5-flash",
		GroundedModel:      "gemini-2.5-flash",
		SearchCooldownMS:   32000,
		ElevatedCooldownMS: 1000,
		Geocoder:           "gemini",
		DefaultStores: []string{
			"Walmart", "Target", "Tesco", "Sainsbury's", "Aldi",
			"Lidl", "Kroger", "Whole Foods", "Costco", "Publix",
		},
	}
}

// LoadEngineConfig reads the YAML file, falling back to defaults when it
// does not exist. A file that exists but cannot be parsed is an error.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if cfg.SearchCooldownMS <= 0 {
		cfg.SearchCooldownMS = DefaultEngineConfig().SearchCooldownMS
	}
	if cfg.ElevatedCooldownMS <= 0 {
		cfg.ElevatedCooldownMS = DefaultEngineConfig().ElevatedCooldownMS
	}
	return cfg, nil
}

// SearchCooldown returns the standard-mode cooldown as a duration.
func (c EngineConfig) SearchCooldown() time.Duration {
	return time.Duration(c.SearchCooldownMS) * time.Millisecond
}

// ElevatedCooldown returns the elevated-mode cooldown as a duration.
func (c EngineConfig) ElevatedCooldown() time.Duration {
	return time.Duration(c.ElevatedCooldownMS) * time.Millisecond
}
