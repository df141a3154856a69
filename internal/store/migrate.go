package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// runMigrations applies all up migrations under migrations/<dir> to the
// database behind driver. m.Close closes the database handle the driver
// was built on, so callers pass a handle dedicated to migrating.
func runMigrations(dir, dbName string, driver database.Driver) error {
	src, err := iofs.New(migrations, "migrations/"+dir)
	if err != nil {
		driver.Close()
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		src.Close()
		driver.Close()
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, _ := m.Version()
	slog.Info("settings schema migrated", "backend", dbName, "version", version)
	return nil
}

// migrateSQL wraps db in a migrate driver and runs the migrations.
func migrateSQL(db *sql.DB, dir, dbName string, withInstance func(*sql.DB) (database.Driver, error)) error {
	driver, err := withInstance(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("migration driver: %w", err)
	}
	return runMigrations(dir, dbName, driver)
}
