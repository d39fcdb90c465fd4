package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"driftwatch/internal/drift"
	"driftwatch/internal/persistence"
)

// runRepo implements DriftRunRepo for PostgreSQL
type runRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewDriftRunRepo creates a PostgreSQL drift run repository.
func NewDriftRunRepo(db *sqlx.DB, timeout time.Duration) persistence.DriftRunRepo {
	return &runRepo{db: db, timeout: timeout}
}

// Insert stores one drift run with its reports as JSONB.
func (r *runRepo) Insert(ctx context.Context, record persistence.DriftRunRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if record.Report == nil {
		return fmt.Errorf("drift run record has no report")
	}
	reportJSON, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal drift report: %w", err)
	}

	var perfJSON []byte
	if record.Performance != nil {
		perfJSON, err = json.Marshal(record.Performance)
		if err != nil {
			return fmt.Errorf("failed to marshal performance report: %w", err)
		}
	}

	query := `
		INSERT INTO drift_runs (id, dataset, report, performance, generated_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		record.ID, record.Dataset, reportJSON, perfJSON, record.GeneratedAt); err != nil {
		return fmt.Errorf("failed to insert drift run: %w", err)
	}
	return nil
}

// Latest returns the most recent run for a dataset, or nil when none exist.
func (r *runRepo) Latest(ctx context.Context, dataset string) (*persistence.DriftRunRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, dataset, report, performance, generated_at, created_at
		FROM drift_runs
		WHERE dataset = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	record, err := scanRun(r.db.QueryRowxContext(ctx, query, dataset))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest drift run: %w", err)
	}
	return record, nil
}

// ListRange returns runs for a dataset within a time window.
func (r *runRepo) ListRange(ctx context.Context, dataset string, tr persistence.TimeRange) ([]persistence.DriftRunRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, dataset, report, performance, generated_at, created_at
		FROM drift_runs
		WHERE dataset = $1 AND generated_at >= $2 AND generated_at <= $3
		ORDER BY generated_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, dataset, tr.From, tr.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query drift run range: %w", err)
	}
	defer rows.Close()

	var records []persistence.DriftRunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drift run rows: %w", err)
	}
	return records, nil
}

func scanRun(row rowScanner) (*persistence.DriftRunRecord, error) {
	var record persistence.DriftRunRecord
	var reportJSON, perfJSON []byte

	if err := row.Scan(&record.ID, &record.Dataset, &reportJSON,
		&perfJSON, &record.GeneratedAt, &record.CreatedAt); err != nil {
		return nil, err
	}

	var report drift.DatasetDriftReport
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drift report: %w", err)
	}
	record.Report = &report

	if len(perfJSON) > 0 {
		var perf drift.PerformanceDriftReport
		if err := json.Unmarshal(perfJSON, &perf); err != nil {
			return nil, fmt.Errorf("failed to unmarshal performance report: %w", err)
		}
		record.Performance = &perf
	}
	return &record, nil
}
