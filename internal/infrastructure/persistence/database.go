package persistence

import (
	"fmt"
	"time"

	"github.com/erp/posting/internal/infrastructure/config"
	"github.com/erp/posting/internal/infrastructure/logger"
	"github.com/erp/posting/internal/infrastructure/persistence/models"
	"github.com/erp/posting/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// Options tune how the connection is opened
type Options struct {
	// Logger receives SQL logs; nil silences GORM
	Logger *zap.Logger
	// LogLevel is the GORM log level ("silent", "error", "warn", "info")
	LogLevel string
	// SlowThreshold marks queries logged as slow
	SlowThreshold time.Duration
	// Tracing registers the OpenTelemetry GORM plugin when Enabled is set
	Tracing telemetry.DBTracingConfig
}

// NewDatabaseWithOptions opens a postgres or sqlite connection depending on
// cfg.Driver. Unique violations are translated to gorm.ErrDuplicatedKey so
// repositories can report duplicate postings.
func NewDatabaseWithOptions(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	gormCfg := &gorm.Config{
		Logger:                 gormLoggerFor(opts),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.DSN()))
	case config.DriverPostgres, "":
		dialector = postgres.Open(cfg.DSN())
		gormCfg.PrepareStmt = true
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Tracing.Enabled {
		tracingCfg := opts.Tracing
		if cfg.Driver == config.DriverSQLite {
			tracingCfg.DBSystem = "sqlite"
		} else if tracingCfg.DBSystem == "" {
			tracingCfg.DBSystem = "postgresql"
		}
		if err := telemetry.NewDBTracingPlugin(tracingCfg, opts.Logger).Register(db); err != nil {
			return nil, fmt.Errorf("failed to register db tracing: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// a single writer keeps sqlite from returning SQLITE_BUSY mid-posting
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

func gormLoggerFor(opts Options) gormlogger.Interface {
	if opts.Logger == nil {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	slow := opts.SlowThreshold
	if slow <= 0 {
		slow = logger.DefaultSlowSQL
	}
	return logger.NewGormLogger(opts.Logger, logger.GormConfig{
		Level:         logger.MapGormLogLevel(opts.LogLevel),
		SlowThreshold: slow,
	})
}

// sqliteDSN enables foreign keys and a busy timeout on file databases
func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

// AutoMigrate creates or updates the posting tables from the models. Used
// for sqlite deployments and tests; postgres is migrated with cmd/migrate.
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(models.All()...)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}
