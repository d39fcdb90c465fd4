package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"driftwatch/internal/alert"
	"driftwatch/internal/persistence"
)

// alertRepo implements AlertRepo for PostgreSQL
type alertRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewAlertRepo creates a PostgreSQL alert repository.
func NewAlertRepo(db *sqlx.DB, timeout time.Duration) persistence.AlertRepo {
	return &alertRepo{db: db, timeout: timeout}
}

// Insert stores one alert with its full payload as JSONB.
func (r *alertRepo) Insert(ctx context.Context, record persistence.AlertRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if record.Payload == nil {
		return fmt.Errorf("alert record has no payload")
	}
	payloadJSON, err := json.Marshal(record.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	query := `
		INSERT INTO drift_alerts (id, dataset, severity, payload, generated_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		record.ID, record.Dataset, record.Severity, payloadJSON, record.GeneratedAt); err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// Latest returns the most recent alert for a dataset, or nil when none exist.
func (r *alertRepo) Latest(ctx context.Context, dataset string) (*persistence.AlertRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, dataset, severity, payload, generated_at, created_at
		FROM drift_alerts
		WHERE dataset = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	record, err := scanAlert(r.db.QueryRowxContext(ctx, query, dataset))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest alert: %w", err)
	}
	return record, nil
}

// ListBySeverity returns recent alerts of one severity tier.
func (r *alertRepo) ListBySeverity(ctx context.Context, severity string, limit int) ([]persistence.AlertRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, dataset, severity, payload, generated_at, created_at
		FROM drift_alerts
		WHERE severity = $1
		ORDER BY generated_at DESC
		LIMIT $2`

	rows, err := r.db.QueryxContext(ctx, query, severity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts by severity: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// ListRange returns alerts for a dataset within a time window.
func (r *alertRepo) ListRange(ctx context.Context, dataset string, tr persistence.TimeRange) ([]persistence.AlertRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, dataset, severity, payload, generated_at, created_at
		FROM drift_alerts
		WHERE dataset = $1 AND generated_at >= $2 AND generated_at <= $3
		ORDER BY generated_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, dataset, tr.From, tr.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert range: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*persistence.AlertRecord, error) {
	var record persistence.AlertRecord
	var payloadJSON []byte

	if err := row.Scan(&record.ID, &record.Dataset, &record.Severity,
		&payloadJSON, &record.GeneratedAt, &record.CreatedAt); err != nil {
		return nil, err
	}

	var payload alert.Alert
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert payload: %w", err)
	}
	record.Payload = &payload
	return &record, nil
}

func scanAlerts(rows *sqlx.Rows) ([]persistence.AlertRecord, error) {
	var records []persistence.AlertRecord
	for rows.Next() {
		record, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}
	return records, nil
}
