package repository

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const defaultMigrationsSource = "file://internal/repository/migrations"

// RunMigrations applies all pending migrations from source (the repo migrations dir when empty)
func RunMigrations(databaseURL, source string) error {
	if source == "" {
		source = defaultMigrationsSource
	}

	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}

	var dirtyErr migrate.ErrDirty
	if !errors.As(err, &dirtyErr) {
		return fmt.Errorf("run migrations: %w", err)
	}

	// A failed migration leaves the schema dirty; step back to the last clean version and retry
	forceVersion := max(dirtyErr.Version-1, 0)
	if ferr := m.Force(forceVersion); ferr != nil {
		return fmt.Errorf("force clean migration version %d: %w", forceVersion, ferr)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rerun migrations after dirty state at version %d: %w", dirtyErr.Version, err)
	}

	return nil
}
