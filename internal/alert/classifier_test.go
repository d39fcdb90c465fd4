package alert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftwatch/internal/drift"
)

func reportWithDriftPct(pct float64) *drift.DatasetDriftReport {
	// 10 evaluable features, pct percent drifted.
	report := &drift.DatasetDriftReport{
		TotalFeatures: 10,
		DriftCount:    int(pct / 10),
		GeneratedAt:   time.Now().UTC(),
	}
	report.DriftPercentage = pct
	p := 0.001
	for i := 0; i < report.DriftCount; i++ {
		report.Results = append(report.Results, drift.FeatureDriftResult{
			Feature:   "amount",
			Kind:      drift.Numeric,
			PValue:    &p,
			IsDrifted: true,
		})
	}
	return report
}

func degradedPerfReport(degraded ...string) *drift.PerformanceDriftReport {
	report := &drift.PerformanceDriftReport{
		Metrics:     make(map[string]drift.MetricDrift),
		GeneratedAt: time.Now().UTC(),
	}
	for _, name := range degraded {
		report.Metrics[name] = drift.MetricDrift{IsDegraded: true}
		report.AnyDegraded = true
	}
	return report
}

func TestClassifySeverityOrdering(t *testing.T) {
	c := NewClassifier(PolicyConfig{})

	cases := []struct {
		pct  float64
		want Severity
	}{
		{10, SeverityOK},
		{30, SeverityWarning},
		{60, SeverityCritical},
		{25, SeverityWarning},  // boundary is inclusive
		{50, SeverityCritical}, // boundary is inclusive
		{0, SeverityOK},
		{100, SeverityCritical},
	}
	for _, tc := range cases {
		a := c.Classify(reportWithDriftPct(tc.pct), nil)
		assert.Equal(t, tc.want, a.Severity, "drift pct %.0f", tc.pct)
	}
}

func TestClassifyHigherTierWins(t *testing.T) {
	c := NewClassifier(PolicyConfig{})

	// Low data drift but two degraded metrics: performance tier dominates.
	a := c.Classify(reportWithDriftPct(10), degradedPerfReport(drift.MetricROCAUC, drift.MetricF1))
	assert.Equal(t, SeverityCritical, a.Severity)

	// One degraded metric lifts OK to WARNING.
	a = c.Classify(reportWithDriftPct(10), degradedPerfReport(drift.MetricROCAUC))
	assert.Equal(t, SeverityWarning, a.Severity)

	// Data tier already higher: performance does not lower it.
	a = c.Classify(reportWithDriftPct(60), degradedPerfReport(drift.MetricROCAUC))
	assert.Equal(t, SeverityCritical, a.Severity)

	// Healthy performance report leaves the data tier untouched.
	a = c.Classify(reportWithDriftPct(30), degradedPerfReport())
	assert.Equal(t, SeverityWarning, a.Severity)
}

func TestClassifyRecommendationsNameTopFeature(t *testing.T) {
	c := NewClassifier(PolicyConfig{})
	a := c.Classify(reportWithDriftPct(60), nil)

	require.NotEmpty(t, a.Recommendations)
	assert.Contains(t, a.Recommendations[0], "IMMEDIATE ACTION REQUIRED")

	var named bool
	for _, rec := range a.Recommendations {
		if rec == `Start investigation with feature "amount" (most significant shift)` {
			named = true
		}
	}
	assert.True(t, named, "critical recommendations must name the top drifted feature")
}

func TestClassifyOKRecommendations(t *testing.T) {
	c := NewClassifier(PolicyConfig{})
	a := c.Classify(reportWithDriftPct(0), nil)

	assert.Equal(t, SeverityOK, a.Severity)
	assert.Contains(t, a.Recommendations, "Continue normal operations")
}

func TestClassifyJSONContract(t *testing.T) {
	c := NewClassifier(PolicyConfig{})
	a := c.Classify(reportWithDriftPct(30), degradedPerfReport(drift.MetricROCAUC))
	a.Dataset = "transactions"

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{
		"id", "dataset", "overall_severity", "features_affected",
		"total_features", "drift_percentage", "recommendations",
		"generated_at", "data_drift", "performance_drift",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "WARNING", decoded["overall_severity"])
	assert.NotEmpty(t, decoded["id"])
}

func TestShouldRetrain(t *testing.T) {
	c := NewClassifier(PolicyConfig{})

	critical := c.Classify(reportWithDriftPct(60), nil)
	assert.True(t, c.ShouldRetrain(critical))

	ok := c.Classify(reportWithDriftPct(10), nil)
	assert.False(t, c.ShouldRetrain(ok))

	// A warning-tier alert above the retrain percentage still triggers.
	lenient := NewClassifier(PolicyConfig{WarningPct: 25, CriticalPct: 90, RetrainPct: 60})
	warning := lenient.Classify(reportWithDriftPct(70), nil)
	assert.Equal(t, SeverityWarning, warning.Severity)
	assert.True(t, lenient.ShouldRetrain(warning))
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	for _, s := range []Severity{SeverityOK, SeverityWarning, SeverityCritical} {
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var decoded Severity
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, s, decoded)
	}

	var s Severity
	assert.Error(t, json.Unmarshal([]byte(`"FATAL"`), &s))
}

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity("CRITICAL")
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, s)

	_, err = ParseSeverity("critical")
	assert.Error(t, err)
}
