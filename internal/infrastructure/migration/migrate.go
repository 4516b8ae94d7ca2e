// Package migration applies the posting schema with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// DefaultMigrationsTable keeps posting schema versions apart from other
// services sharing the database
const DefaultMigrationsTable = "posting_schema_migrations"

// Migrator moves the posting schema between versions.
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// Config holds migration configuration
type Config struct {
	MigrationsPath   string
	MigrationsTable  string
	StatementTimeout time.Duration
}

// New builds a Migrator over an open postgres connection. The version table
// defaults to DefaultMigrationsTable.
func New(db *sql.DB, cfg Config, logger *zap.Logger) (*Migrator, error) {
	table := cfg.MigrationsTable
	if table == "" {
		table = DefaultMigrationsTable
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable:  table,
		StatementTimeout: cfg.StatementTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open migrate postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("load migrations from %s: %w", cfg.MigrationsPath, err)
	}
	return &Migrator{migrate: m, logger: logger.Named("migrate")}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	return m.apply("up", m.migrate.Up)
}

// Down rolls the schema back to empty. Ledger history is dropped with it.
func (m *Migrator) Down() error {
	m.logger.Warn("rolling back posting schema; ledger history will be dropped")
	return m.apply("down", m.migrate.Down)
}

// Steps applies n migrations; negative n rolls back.
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("steps %+d", n), func() error { return m.migrate.Steps(n) })
}

// GoTo migrates up or down to version.
func (m *Migrator) GoTo(version uint) error {
	return m.apply(fmt.Sprintf("goto %d", version), func() error { return m.migrate.Migrate(version) })
}

// apply runs one golang-migrate operation and logs where the schema ended
// up. Nothing to do is not an error.
func (m *Migrator) apply(op string, fn func() error) error {
	log := m.logger.With(zap.String("operation", op))
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("posting schema unchanged")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("posting schema migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Version returns the current migration version; 0 when nothing is applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied and clean without running anything.
// It repairs a schema left dirty by a failed migration.
func (m *Migrator) Force(version int) error {
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	m.logger.Warn("migration version forced", zap.Int("version", version))
	return nil
}

// Close releases the migration source and database driver.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
