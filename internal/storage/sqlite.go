package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/logging"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

// SQLiteCache persists enrichment results in a local SQLite database.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (creating if needed) the cache database at dbPath
// and migrates its schema.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.NewConfigError("storage", "open cache database", err)
	}
	// modernc sqlite allows one writer at a time; serialize connections so
	// concurrent enrichment workers queue instead of hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewConfigError("storage", "ping cache database", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	logging.Debug().Str("path", dbPath).Msg("Opened enrichment cache")
	return &SQLiteCache{db: db}, nil
}

// Get implements Cache.
func (c *SQLiteCache) Get(ctx context.Context, key string) (*registry.Places, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM places_cache WHERE address_key = ?`, key,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("cache entry", key)
	}
	if err != nil {
		return nil, errors.NewIOError("query", "places_cache", err)
	}

	var places registry.Places
	if err := json.Unmarshal([]byte(payload), &places); err != nil {
		return nil, errors.WrapParse("json", "places_cache", err)
	}
	return &places, nil
}

// Put implements Cache.
func (c *SQLiteCache) Put(ctx context.Context, key string, places *registry.Places) error {
	if key == "" {
		return errors.NewValidationError("key", key, "cannot be empty")
	}
	if places == nil {
		return errors.NewValidationError("places", nil, "cannot be nil")
	}

	payload, err := json.Marshal(places)
	if err != nil {
		return errors.WrapParse("json", "places_cache", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO places_cache (address_key, status, payload)
		 VALUES (?, ?, ?)
		 ON CONFLICT (address_key) DO UPDATE SET
		   status = excluded.status,
		   payload = excluded.payload,
		   fetched_at = CURRENT_TIMESTAMP`,
		key, places.Status, string(payload),
	)
	if err != nil {
		return errors.NewIOError("write", "places_cache", err)
	}
	return nil
}

// Len implements Cache.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM places_cache`).Scan(&n); err != nil {
		return 0, errors.NewIOError("query", "places_cache", err)
	}
	return n, nil
}

// Close implements Cache.
func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
