package alert

import (
	"time"

	"github.com/google/uuid"

	"driftwatch/internal/drift"
)

// Alert is the serializable outcome of classifying a drift run. The JSON
// field names are a compatibility contract consumed by dashboards and
// alerting pipelines.
type Alert struct {
	ID               string                        `json:"id"`
	Dataset          string                        `json:"dataset,omitempty"`
	Severity         Severity                      `json:"overall_severity"`
	FeaturesAffected int                           `json:"features_affected"`
	TotalFeatures    int                           `json:"total_features"`
	DriftPercentage  float64                       `json:"drift_percentage"`
	Recommendations  []string                      `json:"recommendations"`
	GeneratedAt      time.Time                     `json:"generated_at"`
	DataDrift        *drift.DatasetDriftReport     `json:"data_drift,omitempty"`
	PerformanceDrift *drift.PerformanceDriftReport `json:"performance_drift,omitempty"`
}

// PolicyConfig holds the severity thresholds. The percentages are policy
// knobs exposed to the caller, not statistically derived values.
type PolicyConfig struct {
	WarningPct  float64 `yaml:"warning_pct"`  // Default: 25
	CriticalPct float64 `yaml:"critical_pct"` // Default: 50
	RetrainPct  float64 `yaml:"retrain_pct"`  // Default: 60
}

// DefaultPolicyConfig returns the default alerting policy
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		WarningPct:  25.0,
		CriticalPct: 50.0,
		RetrainPct:  60.0,
	}
}

// Classifier maps drift reports to alerts. It is a pure function of its
// inputs: no internal state, no transitions.
type Classifier struct {
	policy PolicyConfig
	now    func() time.Time
}

// NewClassifier creates a classifier with the given policy,
// filling zero values with defaults.
func NewClassifier(policy PolicyConfig) *Classifier {
	def := DefaultPolicyConfig()
	if policy.WarningPct <= 0 {
		policy.WarningPct = def.WarningPct
	}
	if policy.CriticalPct <= 0 {
		policy.CriticalPct = def.CriticalPct
	}
	if policy.RetrainPct <= 0 {
		policy.RetrainPct = def.RetrainPct
	}
	return &Classifier{policy: policy, now: time.Now}
}

// Classify produces an alert from a dataset drift report and an optional
// performance drift report. When drift percentage and performance
// degradation qualify for different tiers, the higher tier wins.
func (c *Classifier) Classify(datasetReport *drift.DatasetDriftReport, perfReport *drift.PerformanceDriftReport) *Alert {
	severity := c.severityFor(datasetReport, perfReport)

	ctx := recommendContext{}
	if top := datasetReport.TopDrifted(); top != nil {
		ctx.topFeature = top.Feature
	}
	if perfReport != nil {
		ctx.degradedMetrics = perfReport.DegradedMetrics()
	}

	return &Alert{
		ID:               uuid.NewString(),
		Severity:         severity,
		FeaturesAffected: datasetReport.DriftCount,
		TotalFeatures:    datasetReport.TotalFeatures,
		DriftPercentage:  datasetReport.DriftPercentage,
		Recommendations:  severityPolicy[severity].recommend(ctx),
		GeneratedAt:      c.now().UTC(),
		DataDrift:        datasetReport,
		PerformanceDrift: perfReport,
	}
}

func (c *Classifier) severityFor(datasetReport *drift.DatasetDriftReport, perfReport *drift.PerformanceDriftReport) Severity {
	dataTier := SeverityOK
	switch pct := datasetReport.DriftPercentage; {
	case pct >= c.policy.CriticalPct:
		dataTier = SeverityCritical
	case pct >= c.policy.WarningPct:
		dataTier = SeverityWarning
	}

	perfTier := SeverityOK
	if perfReport != nil {
		switch degraded := len(perfReport.DegradedMetrics()); {
		case degraded > 1:
			perfTier = SeverityCritical
		case degraded == 1:
			perfTier = SeverityWarning
		}
	}

	if perfTier > dataTier {
		return perfTier
	}
	return dataTier
}

// ShouldRetrain reports whether the alert warrants triggering automatic
// retraining.
func (c *Classifier) ShouldRetrain(a *Alert) bool {
	return a.Severity == SeverityCritical || a.DriftPercentage > c.policy.RetrainPct
}
