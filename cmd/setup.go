package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mspro-labs/shop-sync/internal/ai"
	"mspro-labs/shop-sync/internal/config"
	"mspro-labs/shop-sync/internal/engine"
	"mspro-labs/shop-sync/internal/geocode"
	"mspro-labs/shop-sync/internal/logging"
	"mspro-labs/shop-sync/internal/store"
)

// openStore loads config and opens the snapshot database, creating the
// parent directory on first run.
func openStore() (config.AppConfig, config.EngineConfig, *store.Store, error) {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		return appCfg, config.EngineConfig{}, nil, fmt.Errorf("app configuration error: %w", err)
	}
	engineCfg, err := config.LoadEngineConfig(appCfg.ConfigPath)
	if err != nil {
		return appCfg, engineCfg, nil, err
	}

	if dir := filepath.Dir(appCfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return appCfg, engineCfg, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := store.Connect(appCfg.DBPath)
	if err != nil {
		return appCfg, engineCfg, nil, fmt.Errorf("database error: %w", err)
	}
	return appCfg, engineCfg, db, nil
}

// buildEngine wires the AI client, geocoder and snapshot store into a
// ready-to-start engine. The caller owns Close on both returns.
func buildEngine(ctx context.Context, engineCfg config.EngineConfig, db *store.Store) (*engine.Engine, *ai.Client, error) {
	aiClient, err := ai.NewClient(ctx, engineCfg.Model, engineCfg.GroundedModel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize AI client: %w", err)
	}

	var geocoder engine.Geocoder = aiClient
	if engineCfg.Geocoder == "nominatim" {
		geocoder = geocode.NewNominatim()
	}

	eng, err := engine.New(aiClient, geocoder, db, engine.Options{
		Cooldown:         engineCfg.SearchCooldown(),
		ElevatedCooldown: engineCfg.ElevatedCooldown(),
		Elevated:         elevatedFromEnv,
		DefaultStores:    engineCfg.DefaultStores,
		Log:              logging.Log,
	})
	if err != nil {
		aiClient.Close()
		return nil, nil, err
	}
	return eng, aiClient, nil
}

// elevatedFromEnv is the host's capability check for elevated-rate mode,
// consulted before each price-search attempt.
func elevatedFromEnv(ctx context.Context) bool {
	switch os.Getenv("SHOPSYNC_ELEVATED") {
	case "1", "true", "yes":
		return true
	}
	return false
}
