package drift

import (
	"fmt"
	"sort"
	"time"
)

// Metric names reported by the performance detector. Higher is better for
// all four, so degradation is a negative relative change.
const (
	MetricROCAUC    = "roc_auc"
	MetricPrecision = "precision"
	MetricRecall    = "recall"
	MetricF1        = "f1"
)

var metricOrder = []string{MetricROCAUC, MetricPrecision, MetricRecall, MetricF1}

// PerformanceConfig holds the concept-drift thresholds
type PerformanceConfig struct {
	DegradationThreshold float64 `yaml:"degradation_threshold"` // Default: 0.05 (policy knob)
	DecisionThreshold    float64 `yaml:"decision_threshold"`    // Default: 0.5
}

// DefaultPerformanceConfig returns the default performance thresholds
func DefaultPerformanceConfig() PerformanceConfig {
	return PerformanceConfig{
		DegradationThreshold: 0.05,
		DecisionThreshold:    0.5,
	}
}

// PerformanceDetector flags model performance degradation between a
// reference slice and a current slice of (label, predicted probability)
// pairs. Stateless and safe for concurrent use.
type PerformanceDetector struct {
	config PerformanceConfig
}

// NewPerformanceDetector creates a performance detector,
// filling zero values with defaults.
func NewPerformanceDetector(config PerformanceConfig) *PerformanceDetector {
	def := DefaultPerformanceConfig()
	if config.DegradationThreshold <= 0 {
		config.DegradationThreshold = def.DegradationThreshold
	}
	if config.DecisionThreshold <= 0 {
		config.DecisionThreshold = def.DecisionThreshold
	}
	return &PerformanceDetector{config: config}
}

// Detect computes ROC-AUC, precision, recall and F1 independently on the
// reference and current slices and flags metrics whose relative change moves
// in the unfavorable direction beyond the degradation threshold.
// Improvements are never flagged. A metric undefined on either slice (for
// example ROC-AUC on a single-class slice) is recorded with nil values and a
// reason, and is never treated as degraded.
func (d *PerformanceDetector) Detect(refLabels []int, refProbs []float64, curLabels []int, curProbs []float64) (*PerformanceDriftReport, error) {
	if len(refLabels) != len(refProbs) {
		return nil, fmt.Errorf("reference labels and probabilities length mismatch: %d != %d", len(refLabels), len(refProbs))
	}
	if len(curLabels) != len(curProbs) {
		return nil, fmt.Errorf("current labels and probabilities length mismatch: %d != %d", len(curLabels), len(curProbs))
	}
	if len(refLabels) == 0 || len(curLabels) == 0 {
		return nil, fmt.Errorf("empty evaluation slice")
	}

	refMetrics := computeMetrics(refLabels, refProbs, d.config.DecisionThreshold)
	curMetrics := computeMetrics(curLabels, curProbs, d.config.DecisionThreshold)

	report := &PerformanceDriftReport{
		Metrics:     make(map[string]MetricDrift, len(metricOrder)),
		GeneratedAt: time.Now().UTC(),
	}

	for _, name := range metricOrder {
		md := MetricDrift{
			Reference: refMetrics[name].value,
			Current:   curMetrics[name].value,
		}
		switch {
		case md.Reference == nil:
			md.Reason = refMetrics[name].reason
		case md.Current == nil:
			md.Reason = curMetrics[name].reason
		case *md.Reference == 0:
			md.Reason = "reference metric is zero, relative change undefined"
		default:
			change := (*md.Current - *md.Reference) / *md.Reference
			md.RelativeChange = &change
			// Unfavorable direction only: all four metrics are
			// higher-is-better, so only negative changes degrade.
			if change < 0 && -change > d.config.DegradationThreshold {
				md.IsDegraded = true
				report.AnyDegraded = true
			}
		}
		report.Metrics[name] = md
	}

	return report, nil
}

type metricValue struct {
	value  *float64
	reason string
}

func computeMetrics(labels []int, probs []float64, threshold float64) map[string]metricValue {
	out := make(map[string]metricValue, 4)

	if auc, err := RocAUC(labels, probs); err != nil {
		out[MetricROCAUC] = metricValue{reason: err.Error()}
	} else {
		out[MetricROCAUC] = metricValue{value: &auc}
	}

	precision, recall, f1 := PrecisionRecallF1(labels, probs, threshold)
	out[MetricPrecision] = metricValue{value: &precision}
	out[MetricRecall] = metricValue{value: &recall}
	out[MetricF1] = metricValue{value: &f1}
	return out
}

// RocAUC computes the area under the ROC curve from predicted probabilities
// using the rank-sum (Mann-Whitney) formulation with midrank tie handling.
// Returns an error when the slice contains a single class, where AUC is
// undefined.
func RocAUC(labels []int, probs []float64) (float64, error) {
	n := len(labels)
	pos := 0
	for _, y := range labels {
		if y == 1 {
			pos++
		}
	}
	neg := n - pos
	if pos == 0 || neg == 0 {
		return 0, fmt.Errorf("roc_auc undefined: slice contains a single class")
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	// Midranks over tie groups.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && probs[idx[j]] == probs[idx[i]] {
			j++
		}
		mid := float64(i+j+1) / 2.0 // average of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			ranks[idx[k]] = mid
		}
		i = j
	}

	var rankSum float64
	for i, y := range labels {
		if y == 1 {
			rankSum += ranks[i]
		}
	}

	u := rankSum - float64(pos)*float64(pos+1)/2.0
	return u / (float64(pos) * float64(neg)), nil
}

// PrecisionRecallF1 computes classification metrics at a fixed decision
// threshold. Empty denominators yield zero rather than NaN.
func PrecisionRecallF1(labels []int, probs []float64, threshold float64) (precision, recall, f1 float64) {
	var tp, fp, fn float64
	for i, y := range labels {
		predicted := probs[i] >= threshold
		switch {
		case predicted && y == 1:
			tp++
		case predicted && y == 0:
			fp++
		case !predicted && y == 1:
			fn++
		}
	}
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}
