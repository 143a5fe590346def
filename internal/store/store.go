package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only

	"mspro-labs/shop-sync/internal/models"
)

// Store is the Local Store: a SQLite-backed single-row snapshot of the
// whole app state. Items, preferences and the store-location cache are
// always written and read together, so readers never see a torn state.
type Store struct {
	db *sql.DB
}

// Connect opens a connection to the SQLite database and ensures the schema exists.
// It automatically applies recommended settings for concurrency (WAL mode).
func Connect(dbPath string) (*Store, error) {
	// Use robust connection settings to prevent "database locked" errors
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Store{db: db}, nil
}

// createSchema is private as it's only called by Connect.
func createSchema(db *sql.DB) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS snapshot (
	  id INTEGER PRIMARY KEY CHECK (id = 1),
	  payload TEXT NOT NULL,
	  saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schemaSQL)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the persisted snapshot. A missing or corrupt payload is
// treated as "no saved data" and yields the empty snapshot, never an
// error the caller has to handle.
func (s *Store) Load() (models.Snapshot, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM snapshot WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EmptySnapshot(), nil
	}
	if err != nil {
		return models.EmptySnapshot(), fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		// Corrupt payload: start fresh rather than failing the process.
		return models.EmptySnapshot(), nil
	}
	normalize(&snap)
	return snap, nil
}

// Save replaces the persisted snapshot atomically.
func (s *Store) Save(snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	upsertSQL := `
	INSERT INTO snapshot (id, payload, saved_at) VALUES (1, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	  payload = excluded.payload,
	  saved_at = CURRENT_TIMESTAMP;
	`
	if _, err := s.db.Exec(upsertSQL, string(payload)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Clear wipes the persisted snapshot.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM snapshot WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// normalize fills preference defaults for fields older payloads or
// partial writes may be missing.
func normalize(snap *models.Snapshot) {
	defaults := models.DefaultPreferences()
	if snap.Preferences.Currency == "" {
		snap.Preferences.Currency = defaults.Currency
	}
	if snap.Preferences.Units == "" {
		snap.Preferences.Units = defaults.Units
	}
	if snap.Preferences.LocationName == "" {
		snap.Preferences.LocationName = defaults.LocationName
	}
	if snap.Preferences.Theme == "" {
		snap.Preferences.Theme = defaults.Theme
	}
}
