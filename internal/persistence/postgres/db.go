package postgres

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// Connect opens a pooled PostgreSQL connection.
func Connect(dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)
	return db, nil
}

// Schema creates the driftwatch tables when absent.
const Schema = `
CREATE TABLE IF NOT EXISTS drift_alerts (
	id           UUID PRIMARY KEY,
	dataset      TEXT NOT NULL,
	severity     TEXT NOT NULL,
	payload      JSONB NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_drift_alerts_dataset_generated ON drift_alerts (dataset, generated_at DESC);
CREATE INDEX IF NOT EXISTS idx_drift_alerts_severity ON drift_alerts (severity);

CREATE TABLE IF NOT EXISTS drift_runs (
	id           UUID PRIMARY KEY,
	dataset      TEXT NOT NULL,
	report       JSONB NOT NULL,
	performance  JSONB,
	generated_at TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_drift_runs_dataset_generated ON drift_runs (dataset, generated_at DESC);
`

// EnsureSchema applies the schema.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
