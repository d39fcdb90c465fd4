// Package persistence defines the storage interfaces for drift runs and
// alerts. Implementations live in subpackages; the engine itself never
// persists anything.
package persistence

import (
	"context"
	"time"

	"driftwatch/internal/alert"
	"driftwatch/internal/drift"
)

// TimeRange bounds a history query
type TimeRange struct {
	From time.Time
	To   time.Time
}

// AlertRecord is one persisted alert row
type AlertRecord struct {
	ID          string       `db:"id"`
	Dataset     string       `db:"dataset"`
	Severity    string       `db:"severity"`
	Payload     *alert.Alert `db:"-"`
	GeneratedAt time.Time    `db:"generated_at"`
	CreatedAt   time.Time    `db:"created_at"`
}

// DriftRunRecord is one persisted drift detection run
type DriftRunRecord struct {
	ID          string                        `db:"id"`
	Dataset     string                        `db:"dataset"`
	Report      *drift.DatasetDriftReport     `db:"-"`
	Performance *drift.PerformanceDriftReport `db:"-"`
	GeneratedAt time.Time                     `db:"generated_at"`
	CreatedAt   time.Time                     `db:"created_at"`
}

// AlertRepo stores and retrieves alerts
type AlertRepo interface {
	Insert(ctx context.Context, record AlertRecord) error
	Latest(ctx context.Context, dataset string) (*AlertRecord, error)
	ListBySeverity(ctx context.Context, severity string, limit int) ([]AlertRecord, error)
	ListRange(ctx context.Context, dataset string, tr TimeRange) ([]AlertRecord, error)
}

// DriftRunRepo stores and retrieves drift detection runs
type DriftRunRepo interface {
	Insert(ctx context.Context, record DriftRunRecord) error
	Latest(ctx context.Context, dataset string) (*DriftRunRecord, error)
	ListRange(ctx context.Context, dataset string, tr TimeRange) ([]DriftRunRecord, error)
}
