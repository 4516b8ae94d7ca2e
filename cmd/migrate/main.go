package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/posting/internal/infrastructure/config"
	"github.com/erp/posting/internal/infrastructure/logger"
	"github.com/erp/posting/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("usage")

// fileCommands only touch the migrations directory.
var fileCommands = map[string]func(dir string, args []string, out io.Writer, log *zap.Logger) error{
	"create": createCmd,
	"list":   listCmd,
}

// schemaCommands run against the configured postgres database.
var schemaCommands = map[string]func(m *migration.Migrator, args []string, log *zap.Logger) error{
	"up":   func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() },
	"down": func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() },
	"steps": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := intArg(args, "steps <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"goto": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := intArg(args, "goto <version>")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("%w: goto <version> needs a non-negative version", errUsage)
		}
		return m.GoTo(uint(v))
	},
	"force": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		return m.Force(v)
	},
	"version": func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("posting schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	},
}

func main() {
	var path, table, logLevel string
	flag.StringVar(&path, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&table, "table", migration.DefaultMigrationsTable, "Schema version table")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	}, "posting-migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(flag.Args(), path, table, os.Stdout, log); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		}
		log.Fatal("migration command failed", zap.Error(err))
	}
}

func run(args []string, path, table string, out io.Writer, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", errUsage)
	}
	command, rest := args[0], args[1:]

	dir, err := resolveMigrationsPath(path)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}
	log.Info("migration command", zap.String("command", command), zap.String("migrations_path", dir))

	if cmd, ok := fileCommands[command]; ok {
		return cmd(dir, rest, out, log)
	}
	cmd, ok := schemaCommands[command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	m, closeDB, err := openMigrator(dir, table, log)
	if err != nil {
		return err
	}
	defer closeDB()
	return cmd(m, rest, log)
}

func openMigrator(dir, table string, log *zap.Logger) (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("driver %q: the migration CLI only manages postgres; sqlite databases are created by the server at startup", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	m, err := migration.New(db, migration.Config{MigrationsPath: dir, MigrationsTable: table}, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return m, func() {
		_ = m.Close()
		_ = db.Close()
	}, nil
}

func createCmd(dir string, args []string, _ io.Writer, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: create <name> [description]", errUsage)
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listCmd(dir string, _ []string, out io.Writer, _ *zap.Logger) error {
	migrations, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		_, err = fmt.Fprintln(out, "no migrations in", dir)
		return err
	}
	for _, m := range migrations {
		if _, err := fmt.Fprintln(out, "  -", m); err != nil {
			return err
		}
	}
	return nil
}

func intArg(args []string, usage string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", errUsage, usage, args[0])
	}
	return n, nil
}

// resolveMigrationsPath falls back to ./migrations, then to the repository
// root relative to the executable.
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return filepath.Abs(defaultMigrationsPath)
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Posting Engine Schema Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  steps <n>             Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version after a failed run
  create <name> [desc]  Create the next numbered migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -table string         Schema version table (default: posting_schema_migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Database settings come from config.toml and POSTING_DATABASE_* variables.`)
}
