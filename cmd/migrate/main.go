package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// fileCommand works on the migrations directory only
type fileCommand func(log *zap.Logger, dir string, args []string) error

// dbCommand needs a connected migrator
type dbCommand func(log *zap.Logger, m *migration.Migrator, args []string) error

var fileCommands = map[string]fileCommand{
	"create": runCreate,
	"list":   runList,
}

var dbCommands = map[string]dbCommand{
	"up":   func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Up() },
	"down": func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Down() },
	"step": func(_ *zap.Logger, m *migration.Migrator, args []string) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"goto": func(_ *zap.Logger, m *migration.Migrator, args []string) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("version must not be negative: %d", v)
		}
		return m.GoTo(uint(v))
	},
	"force": func(_ *zap.Logger, m *migration.Migrator, args []string) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(v)
	},
	"version": runVersion,
}

func main() {
	var migrationsPath, logLevel string
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command, rest := args[0], args[1:]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	dir, err := resolveMigrationsPath(migrationsPath)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	log.Info("Migration CLI started", zap.String("command", command), zap.String("migrations_path", dir))

	if fn, ok := fileCommands[command]; ok {
		if err := fn(log, dir, rest); err != nil {
			log.Fatal("Command failed", zap.String("command", command), zap.Error(err))
		}
		return
	}

	fn, ok := dbCommands[command]
	if !ok {
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	if err := fn(log, m, rest); err != nil {
		log.Fatal("Command failed", zap.String("command", command), zap.Error(err))
	}
}

func runCreate(log *zap.Logger, dir string, args []string) error {
	if len(args) < 1 {
		return errors.New("migration name required: migrate create <name> [description]")
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(log *zap.Logger, dir string, _ []string) error {
	names, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(names)))
	for _, n := range names {
		fmt.Println("  -", n)
	}
	return nil
}

func runVersion(log *zap.Logger, m *migration.Migrator, _ []string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func intArg(args []string, what string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

// resolveMigrationsPath falls back to ./migrations, then to the directory
// two levels above the executable.
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	path = defaultMigrationsPath
	if _, err := os.Stat(path); err != nil {
		if exe, err := os.Executable(); err == nil {
			candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	return filepath.Abs(path)
}

func printUsage() {
	fmt.Println(`POS schema migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the applied version
  force <version>       Set the version without running SQL (clears dirty)
  create <name> [desc]  Create a new up/down file pair
  list                  List migration files

Flags:
  -path string          Migrations directory (default: ./migrations)
  -log-level string     debug, info, warn or error (default: info)

Connection settings come from POS_DATABASE_HOST, POS_DATABASE_PORT,
POS_DATABASE_USER, POS_DATABASE_PASSWORD, POS_DATABASE_DBNAME and
POS_DATABASE_SSLMODE.`)
}
