package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"coursehub/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// Open connects to Postgres through the pgx stdlib driver and verifies the
// connection with a ping.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	dsn := PrepareDSN(cfg.DBConnectionString, cfg.IsDevelopment())

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	logger.Info().
		Int("max_open_conns", cfg.DBMaxOpenConns).
		Msg("Database connection successful")
	return db, nil
}

// PrepareDSN disables SSL for local development and forces the simple query
// protocol elsewhere, since hosted Postgres sits behind a transaction pooler
// that cannot keep server-side prepared statements.
func PrepareDSN(dsn string, development bool) string {
	isURL := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")

	appendParam := func(dsn, param string) string {
		if !isURL {
			return dsn + " " + param
		}
		if strings.Contains(dsn, "?") {
			return dsn + "&" + param
		}
		return dsn + "?" + param
	}

	if development && !strings.Contains(dsn, "sslmode") {
		dsn = appendParam(dsn, "sslmode=disable")
	}
	if !development && !strings.Contains(dsn, "prefer_simple_protocol") {
		dsn = appendParam(dsn, "prefer_simple_protocol=true")
	}
	return dsn
}
