package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cf_mashup/internal/platform/config"
	"cf_mashup/internal/platform/logging"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

const schema = `
CREATE TABLE IF NOT EXISTS mashups (
    id           BIGSERIAL PRIMARY KEY,
    request_data TEXT NOT NULL,
    problems     JSONB NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Connect opens a pool through the pgx stdlib driver and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 25
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	logging.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Msg("Connected to PostgreSQL")
	return db, nil
}

// EnsureSchema creates the mashups table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

func Close(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing database connection")
		return
	}
	logging.Info().Msg("Database connection closed")
}
