package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftwatch/internal/alert"
	"driftwatch/internal/persistence"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func sampleAlert() *alert.Alert {
	return &alert.Alert{
		ID:               "alert-1",
		Dataset:          "transactions",
		Severity:         alert.SeverityWarning,
		FeaturesAffected: 3,
		TotalFeatures:    12,
		DriftPercentage:  25.0,
		Recommendations:  []string{"Monitor closely: moderate drift detected"},
		GeneratedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAlertRepoInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db, time.Second)

	a := sampleAlert()
	mock.ExpectExec(`INSERT INTO drift_alerts`).
		WithArgs(a.ID, "transactions", "WARNING", sqlmock.AnyArg(), a.GeneratedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), persistence.AlertRecord{
		ID:          a.ID,
		Dataset:     "transactions",
		Severity:    "WARNING",
		Payload:     a,
		GeneratedAt: a.GeneratedAt,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepoInsertRequiresPayload(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewAlertRepo(db, time.Second)

	err := repo.Insert(context.Background(), persistence.AlertRecord{ID: "x"})
	assert.Error(t, err)
}

func TestAlertRepoLatest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db, time.Second)

	a := sampleAlert()
	payload, err := json.Marshal(a)
	require.NoError(t, err)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "dataset", "severity", "payload", "generated_at", "created_at"}).
		AddRow(a.ID, "transactions", "WARNING", payload, a.GeneratedAt, now)
	mock.ExpectQuery(`SELECT id, dataset, severity, payload, generated_at, created_at\s+FROM drift_alerts\s+WHERE dataset = \$1`).
		WithArgs("transactions").
		WillReturnRows(rows)

	record, err := repo.Latest(context.Background(), "transactions")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, a.ID, record.ID)
	assert.Equal(t, "WARNING", record.Severity)
	require.NotNil(t, record.Payload)
	assert.Equal(t, alert.SeverityWarning, record.Payload.Severity)
	assert.Equal(t, 25.0, record.Payload.DriftPercentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepoLatestNoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db, time.Second)

	mock.ExpectQuery(`SELECT id, dataset, severity, payload, generated_at, created_at`).
		WithArgs("empty").
		WillReturnRows(sqlmock.NewRows([]string{"id", "dataset", "severity", "payload", "generated_at", "created_at"}))

	record, err := repo.Latest(context.Background(), "empty")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestAlertRepoListBySeverity(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db, time.Second)

	a := sampleAlert()
	payload, err := json.Marshal(a)
	require.NoError(t, err)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "dataset", "severity", "payload", "generated_at", "created_at"}).
		AddRow("alert-1", "transactions", "CRITICAL", payload, now, now).
		AddRow("alert-2", "transactions", "CRITICAL", payload, now.Add(-time.Hour), now)
	mock.ExpectQuery(`WHERE severity = \$1`).
		WithArgs("CRITICAL", 10).
		WillReturnRows(rows)

	records, err := repo.ListBySeverity(context.Background(), "CRITICAL", 10)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAlertRepoListRange(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db, time.Second)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	mock.ExpectQuery(`WHERE dataset = \$1 AND generated_at >= \$2 AND generated_at <= \$3`).
		WithArgs("transactions", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"id", "dataset", "severity", "payload", "generated_at", "created_at"}))

	records, err := repo.ListRange(context.Background(), "transactions", persistence.TimeRange{From: from, To: to})
	require.NoError(t, err)
	assert.Empty(t, records)
}
