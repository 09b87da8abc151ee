package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"coursehub/internal/logger"
	"coursehub/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

type migrateConfig struct {
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	var cfg migrateConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DBConnectionString)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.Fatal().Msgf("Failed to create migrate driver: %v", err)
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logger.Fatal().Msgf("Failed to read embedded migrations: %v", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		logger.Fatal().Msgf("Migration init failed: %v", err)
	}
	m.Log = &migrateLogger{logger: logger}

	if err := run(m, args, logger); err != nil {
		logger.Fatal().Err(err).Str("command", args[0]).Msg("Migration failed")
	}
}

func run(m *migrate.Migrate, args []string, logger zerolog.Logger) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		logger.Info().Msg("Migrations applied")
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		logger.Info().Int("steps", steps).Msg("Migrations rolled back")
	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return err
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)
	case "force":
		if len(args) < 2 {
			return errors.New("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return err
		}
		logger.Info().Int("version", v).Msg("Migration version forced")
	default:
		usage()
		os.Exit(1)
	}
	return nil
}

type migrateLogger struct {
	logger zerolog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Info().Msgf(format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version

Environment:
  DB_CONNECTION_STRING   Required. Postgres connection string.`)
}
