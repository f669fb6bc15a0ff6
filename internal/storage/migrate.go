package storage

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/civicdatadog/civicmap/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// runMigrations brings the cache schema up to date. It opens a separate
// connection so migration state never interferes with the main one.
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return errors.NewConfigError("storage", "open migration database", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return errors.NewConfigError("storage", "create sqlite driver", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.NewConfigError("storage", "load embedded migrations", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return errors.NewConfigError("storage", "create migrate instance", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.NewConfigError("storage", "run migrations", err)
	}
	return nil
}
