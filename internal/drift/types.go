package drift

import "time"

// FeatureKind declares how a feature is compared
type FeatureKind string

const (
	Numeric     FeatureKind = "numeric"
	Categorical FeatureKind = "categorical"
)

// FeatureDescriptor names a monitored feature and its declared kind.
// The manifest entry is immutable for the duration of a comparison run.
type FeatureDescriptor struct {
	Name string      `json:"name" yaml:"name"`
	Kind FeatureKind `json:"kind" yaml:"kind"`
}

// FeatureDriftResult holds the outcome of comparing one feature between
// the reference and current samples.
type FeatureDriftResult struct {
	Feature           string      `json:"feature"`
	Kind              FeatureKind `json:"kind"`
	PValue            *float64    `json:"p_value"`
	Statistic         float64     `json:"statistic"`
	PrimaryDistance   float64     `json:"primary_distance"`   // Wasserstein (numeric) or PSI (categorical)
	SecondaryDistance float64     `json:"secondary_distance"` // Jensen-Shannon divergence
	IsDrifted         bool        `json:"is_drifted"`
	Degenerate        bool        `json:"degenerate,omitempty"`
	LowExpectedCount  bool        `json:"low_expected_count,omitempty"`
}

// UnavailableFeature records a manifest entry that could not be evaluated,
// with the reason. Distinct from "no drift found".
type UnavailableFeature struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// DatasetDriftReport aggregates per-feature results into a dataset verdict.
// DriftPercentage is always derived from DriftCount over evaluable features.
type DatasetDriftReport struct {
	TotalFeatures        int                  `json:"total_features"`
	DriftCount           int                  `json:"drift_count"`
	DriftPercentage      float64              `json:"drift_percentage"`
	OverallDriftDetected bool                 `json:"overall_drift_detected"`
	Results              []FeatureDriftResult `json:"results"` // ranked descending by 1 - p_value
	Unavailable          []UnavailableFeature `json:"unavailable,omitempty"`
	GeneratedAt          time.Time            `json:"generated_at"`
}

// TopDrifted returns the worst offender, or nil when nothing drifted.
func (r *DatasetDriftReport) TopDrifted() *FeatureDriftResult {
	for i := range r.Results {
		if r.Results[i].IsDrifted {
			return &r.Results[i]
		}
	}
	return nil
}

// MetricDrift compares one classification metric between slices.
// Reference/Current are nil when the metric could not be computed.
type MetricDrift struct {
	Reference      *float64 `json:"reference"`
	Current        *float64 `json:"current"`
	RelativeChange *float64 `json:"relative_change"`
	IsDegraded     bool     `json:"is_degraded"`
	Reason         string   `json:"reason,omitempty"`
}

// PerformanceDriftReport holds metric-level drift for a binary classifier.
type PerformanceDriftReport struct {
	Metrics     map[string]MetricDrift `json:"metrics"`
	AnyDegraded bool                   `json:"any_degraded"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// DegradedMetrics returns the names of degraded metrics in stable order.
func (r *PerformanceDriftReport) DegradedMetrics() []string {
	var names []string
	for _, name := range metricOrder {
		if m, ok := r.Metrics[name]; ok && m.IsDegraded {
			names = append(names, name)
		}
	}
	return names
}
