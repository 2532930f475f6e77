package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	applog "expenses/internal/log"
)

// schemaTable records applied versions of the expenses schema.
const schemaTable = "expenses_schema_migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the expenses schema at dbPath up to date and returns
// the resulting schema version.
func RunMigrations(dbPath string, logger *applog.Logger) (uint, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentStorage)

	m, err := newMigrator(dbPath)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate expenses schema in %s: %w", dbPath, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read expenses schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("expenses schema version %d is dirty in %s", version, dbPath)
	}

	logger.Debug("Expenses schema up to date",
		applog.FieldOperation, applog.OpMigrate,
		applog.FieldPath, dbPath,
		"version", version)
	return version, nil
}

// newMigrator opens its own connection so closing the migrator leaves the
// repository's pool alone.
func newMigrator(dbPath string) (*migrate.Migrate, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s for migration: %w", dbPath, err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: schemaTable})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load embedded expenses migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create expenses migrator: %w", err)
	}
	return m, nil
}
