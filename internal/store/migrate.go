package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded Postgres migrations.
type Migrator struct {
	migrate *migrate.Migrate
	logger  log.Interface
}

// NewMigrator prepares a migrator against a postgres:// database URL.
func NewMigrator(databaseURL string, logger log.Interface) (*Migrator, error) {
	if logger == nil {
		logger = log.Log
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}

	return &Migrator{migrate: m, logger: logger.WithField("component", "migrate")}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("schema up to date")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	version, _, _ := m.migrate.Version()
	m.logger.WithField("version", version).Info("schema migrated")
	return nil
}

// Down rolls back one migration.
func (m *Migrator) Down() error {
	if err := m.migrate.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("nothing to roll back")
			return nil
		}
		return fmt.Errorf("migrate down: %w", err)
	}

	version, _, _ := m.migrate.Version()
	m.logger.WithField("version", version).Info("schema rolled back")
	return nil
}

// Version returns the applied version and whether it is dirty.
func (m *Migrator) Version() (uint, bool, error) {
	v, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases the source and database handles.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
