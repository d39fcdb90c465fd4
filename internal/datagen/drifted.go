package datagen

import (
	"fmt"
	"time"

	"driftwatch/internal/features"
)

// DriftLevel selects how much synthetic drift to inject
type DriftLevel string

const (
	DriftNone     DriftLevel = "none"
	DriftModerate DriftLevel = "moderate"
	DriftSevere   DriftLevel = "severe"
)

// ParseDriftLevel validates a drift level name.
func ParseDriftLevel(name string) (DriftLevel, error) {
	switch DriftLevel(name) {
	case DriftNone, DriftModerate, DriftSevere:
		return DriftLevel(name), nil
	default:
		return DriftNone, fmt.Errorf("unknown drift level %q (want none|moderate|severe)", name)
	}
}

// Drifted returns a copy of the transactions with intentional distribution
// shift injected, for drift-detection demos and tests.
//
//	moderate: amounts scaled ~1.2x with noise, 30% of hours moved to evening
//	severe:   amounts scaled ~2.0x with noise, all hours moved to 00-05
func (g *Generator) Drifted(txs []features.Transaction, level DriftLevel) []features.Transaction {
	out := make([]features.Transaction, len(txs))
	copy(out, txs)

	switch level {
	case DriftNone:
		return out

	case DriftModerate:
		eveningHours := []int{18, 19, 20, 21, 22}
		for i := range out {
			out[i].Amount = clamp(out[i].Amount*(1.2+0.1*g.rng.NormFloat64()), amountMin, amountMax)
			if g.rng.Float64() < 0.3 {
				out[i].Timestamp = withHour(out[i].Timestamp, eveningHours[g.rng.Intn(len(eveningHours))])
			}
		}

	case DriftSevere:
		for i := range out {
			out[i].Amount = clamp(out[i].Amount*(2.0+0.3*g.rng.NormFloat64()), amountMin, amountMax)
			out[i].Timestamp = withHour(out[i].Timestamp, g.rng.Intn(6))
		}
	}
	return out
}

func withHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, t.Minute(), t.Second(), 0, t.Location())
}
