// Package datagen produces seeded synthetic transaction data with
// configurable fraud patterns, for training demos, drift scenarios and
// tests. Generation is deterministic for a fixed seed.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"driftwatch/internal/features"
)

var (
	merchantCategories = []string{
		"grocery", "gas_station", "restaurant", "retail", "online",
		"pharmacy", "entertainment", "travel", "utilities", "healthcare",
	}
	transactionTypes   = []string{"purchase", "withdrawal", "transfer", "payment", "refund"}
	transactionWeights = []float64{0.70, 0.10, 0.10, 0.08, 0.02}
	deviceTypes        = []string{"mobile", "desktop", "tablet", "pos_terminal", "atm"}
	locations          = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"}
)

// Amount distribution parameters: log-normal, clamped to [1, 10000].
const (
	amountLogMean  = 3.5
	amountLogSigma = 1.2
	amountMin      = 1.0
	amountMax      = 10000.0
)

// Generator produces synthetic transactions from a seeded RNG.
type Generator struct {
	rng   *rand.Rand
	start time.Time
}

// NewGenerator creates a generator seeded for reproducibility. The
// transaction window ends at a fixed anchor so output is stable across runs.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Transactions generates n transactions over days of history with the given
// fraud rate, returning the transactions and their fraud labels.
func (g *Generator) Transactions(n int, fraudRate float64, days int) ([]features.Transaction, []int) {
	if days <= 0 {
		days = 90
	}
	nUsers := n / 10
	if nUsers < 100 {
		nUsers = 100
	}

	txs := make([]features.Transaction, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		isFraud := g.rng.Float64() < fraudRate

		tx := features.Transaction{
			TransactionID:    fmt.Sprintf("txn_%08d", i),
			UserID:           fmt.Sprintf("user_%06d", g.rng.Intn(nUsers)+1),
			Amount:           g.amount(isFraud),
			MerchantCategory: pick(g.rng, merchantCategories),
			TransactionType:  g.weightedTransactionType(),
			DeviceType:       pick(g.rng, deviceTypes),
			Location:         pick(g.rng, locations),
			Timestamp:        g.timestamp(days, isFraud),
		}

		txs[i] = tx
		if isFraud {
			labels[i] = 1
		}
	}
	return txs, labels
}

// amount draws a log-normal transaction amount. Fraudulent transactions
// skew larger.
func (g *Generator) amount(isFraud bool) float64 {
	v := math.Exp(amountLogMean + amountLogSigma*g.rng.NormFloat64())
	if isFraud {
		v *= 2.5
	}
	return clamp(v, amountMin, amountMax)
}

// timestamp places legitimate transactions in active hours (06-22) and
// fraudulent ones disproportionately late at night.
func (g *Generator) timestamp(days int, isFraud bool) time.Time {
	day := g.rng.Intn(days)
	var hour int
	if isFraud && g.rng.Float64() < 0.6 {
		hour = g.rng.Intn(6) // 00-05
	} else {
		hour = 6 + g.rng.Intn(17) // 06-22
	}
	minute := g.rng.Intn(60)
	return g.start.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func (g *Generator) weightedTransactionType() string {
	r := g.rng.Float64()
	acc := 0.0
	for i, w := range transactionWeights {
		acc += w
		if r < acc {
			return transactionTypes[i]
		}
	}
	return transactionTypes[len(transactionTypes)-1]
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
