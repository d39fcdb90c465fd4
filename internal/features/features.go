// Package features computes the model feature set from raw transactions.
// It is the single source of truth shared by training, serving and drift
// monitoring: one deterministic ComputeRow entry point, no hidden state, so
// every caller derives identical features from identical input.
package features

import (
	"math"
	"time"

	"driftwatch/internal/drift"
)

// Transaction is one raw payment event as received from upstream.
type Transaction struct {
	TransactionID    string    `json:"transaction_id"`
	UserID           string    `json:"user_id"`
	Timestamp        time.Time `json:"timestamp"`
	Amount           float64   `json:"amount"`
	MerchantCategory string    `json:"merchant_category"`
	TransactionType  string    `json:"transaction_type"`
	DeviceType       string    `json:"device_type"`
	Location         string    `json:"location"`
}

// Row is one computed feature row. Numeric values align with NumericNames,
// categorical values with CategoricalNames.
type Row struct {
	Numeric     []float64
	Categorical []string
}

var numericNames = []string{
	"amount",
	"amount_log",
	"hour_of_day",
	"day_of_week",
	"is_weekend",
	"is_late_night",
	"is_business_hours",
	"is_round_amount",
}

var categoricalNames = []string{
	"merchant_category",
	"transaction_type",
	"device_type",
	"location",
}

// NumericNames returns the ordered numeric feature names. These are the
// model's input vector layout.
func NumericNames() []string {
	out := make([]string, len(numericNames))
	copy(out, numericNames)
	return out
}

// CategoricalNames returns the ordered categorical feature names.
func CategoricalNames() []string {
	out := make([]string, len(categoricalNames))
	copy(out, categoricalNames)
	return out
}

// Manifest returns the ordered feature manifest for drift monitoring:
// numeric features first, then categorical.
func Manifest() []drift.FeatureDescriptor {
	manifest := make([]drift.FeatureDescriptor, 0, len(numericNames)+len(categoricalNames))
	for _, name := range numericNames {
		manifest = append(manifest, drift.FeatureDescriptor{Name: name, Kind: drift.Numeric})
	}
	for _, name := range categoricalNames {
		manifest = append(manifest, drift.FeatureDescriptor{Name: name, Kind: drift.Categorical})
	}
	return manifest
}

// ComputeRow derives the full feature row from one transaction.
// Deterministic: same transaction, same row, every caller.
func ComputeRow(tx Transaction) Row {
	hour := float64(tx.Timestamp.Hour())
	dow := float64(int(tx.Timestamp.Weekday()+6) % 7) // Monday = 0

	return Row{
		Numeric: []float64{
			tx.Amount,
			math.Log1p(tx.Amount),
			hour,
			dow,
			boolFeature(dow >= 5),
			boolFeature(hour >= 23 || hour <= 6),
			boolFeature(hour >= 9 && hour <= 17 && dow < 5),
			boolFeature(math.Mod(tx.Amount, 1) == 0),
		},
		Categorical: []string{
			tx.MerchantCategory,
			tx.TransactionType,
			tx.DeviceType,
			tx.Location,
		},
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
