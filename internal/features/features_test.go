package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftwatch/internal/drift"
)

func sampleTransaction() Transaction {
	return Transaction{
		TransactionID:    "txn_00000001",
		UserID:           "user_000042",
		Timestamp:        time.Date(2025, 3, 15, 2, 30, 0, 0, time.UTC), // Saturday 02:30
		Amount:           125.50,
		MerchantCategory: "online",
		TransactionType:  "purchase",
		DeviceType:       "mobile",
		Location:         "Chicago",
	}
}

func TestComputeRowValues(t *testing.T) {
	row := ComputeRow(sampleTransaction())

	require.Len(t, row.Numeric, len(NumericNames()))
	require.Len(t, row.Categorical, len(CategoricalNames()))

	byName := map[string]float64{}
	for i, name := range NumericNames() {
		byName[name] = row.Numeric[i]
	}

	assert.Equal(t, 125.50, byName["amount"])
	assert.InDelta(t, 4.840, byName["amount_log"], 0.001) // log1p(125.5)
	assert.Equal(t, 2.0, byName["hour_of_day"])
	assert.Equal(t, 5.0, byName["day_of_week"]) // Saturday with Monday=0
	assert.Equal(t, 1.0, byName["is_weekend"])
	assert.Equal(t, 1.0, byName["is_late_night"])
	assert.Equal(t, 0.0, byName["is_business_hours"])
	assert.Equal(t, 0.0, byName["is_round_amount"])

	assert.Equal(t, []string{"online", "purchase", "mobile", "Chicago"}, row.Categorical)
}

func TestComputeRowRoundAmount(t *testing.T) {
	tx := sampleTransaction()
	tx.Amount = 100
	row := ComputeRow(tx)

	byName := map[string]float64{}
	for i, name := range NumericNames() {
		byName[name] = row.Numeric[i]
	}
	assert.Equal(t, 1.0, byName["is_round_amount"])
}

func TestComputeRowBusinessHours(t *testing.T) {
	tx := sampleTransaction()
	tx.Timestamp = time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC) // Wednesday 14:00
	row := ComputeRow(tx)

	byName := map[string]float64{}
	for i, name := range NumericNames() {
		byName[name] = row.Numeric[i]
	}
	assert.Equal(t, 1.0, byName["is_business_hours"])
	assert.Equal(t, 0.0, byName["is_weekend"])
	assert.Equal(t, 0.0, byName["is_late_night"])
}

func TestComputeRowDeterministic(t *testing.T) {
	tx := sampleTransaction()
	assert.Equal(t, ComputeRow(tx), ComputeRow(tx))
}

func TestManifestShape(t *testing.T) {
	manifest := Manifest()
	require.Len(t, manifest, len(NumericNames())+len(CategoricalNames()))

	kinds := map[string]drift.FeatureKind{}
	for _, fd := range manifest {
		kinds[fd.Name] = fd.Kind
	}
	assert.Equal(t, drift.Numeric, kinds["amount"])
	assert.Equal(t, drift.Numeric, kinds["is_late_night"])
	assert.Equal(t, drift.Categorical, kinds["merchant_category"])
	assert.Equal(t, drift.Categorical, kinds["location"])
}

func TestBuildTableAndMatrixRoundTrip(t *testing.T) {
	txs := []Transaction{sampleTransaction(), sampleTransaction()}
	txs[1].Amount = 99.99
	labels := []int{1, 0}

	table, err := BuildTable(txs, labels)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())

	_, ok := table.Column(LabelColumn)
	assert.True(t, ok)

	X, y, err := Matrix(table)
	require.NoError(t, err)
	require.Len(t, X, 2)
	assert.Equal(t, []int{1, 0}, y)
	assert.Equal(t, 125.50, X[0][0])
	assert.Equal(t, 99.99, X[1][0])
}

func TestBuildTableWithoutLabels(t *testing.T) {
	table, err := BuildTable([]Transaction{sampleTransaction()}, nil)
	require.NoError(t, err)

	_, ok := table.Column(LabelColumn)
	assert.False(t, ok)

	X, y, err := Matrix(table)
	require.NoError(t, err)
	assert.Len(t, X, 1)
	assert.Nil(t, y)
}

func TestBuildTableLabelMismatch(t *testing.T) {
	_, err := BuildTable([]Transaction{sampleTransaction()}, []int{1, 0})
	assert.Error(t, err)
}
