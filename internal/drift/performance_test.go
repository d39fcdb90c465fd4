package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRocAUCKnownValue(t *testing.T) {
	labels := []int{0, 0, 1, 1}
	probs := []float64{0.1, 0.4, 0.35, 0.8}

	auc, err := RocAUC(labels, probs)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, auc, 1e-12)
}

func TestRocAUCPerfectSeparation(t *testing.T) {
	labels := []int{0, 0, 1, 1}
	probs := []float64{0.1, 0.2, 0.8, 0.9}

	auc, err := RocAUC(labels, probs)
	require.NoError(t, err)
	assert.Equal(t, 1.0, auc)
}

func TestRocAUCTiesUseMidranks(t *testing.T) {
	// All probabilities equal: AUC must be exactly 0.5.
	labels := []int{0, 1, 0, 1}
	probs := []float64{0.5, 0.5, 0.5, 0.5}

	auc, err := RocAUC(labels, probs)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, auc, 1e-12)
}

func TestRocAUCSingleClassUndefined(t *testing.T) {
	_, err := RocAUC([]int{1, 1, 1}, []float64{0.2, 0.5, 0.9})
	require.Error(t, err)

	_, err = RocAUC([]int{0, 0, 0}, []float64{0.2, 0.5, 0.9})
	require.Error(t, err)
}

func TestPrecisionRecallF1KnownValues(t *testing.T) {
	labels := []int{1, 1, 0, 0, 1}
	probs := []float64{0.9, 0.3, 0.8, 0.2, 0.7}
	// Predictions at 0.5: [1, 0, 1, 0, 1] -> tp=2 fp=1 fn=1.

	precision, recall, f1 := PrecisionRecallF1(labels, probs, 0.5)
	assert.InDelta(t, 2.0/3.0, precision, 1e-12)
	assert.InDelta(t, 2.0/3.0, recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, f1, 1e-12)
}

func TestPrecisionRecallF1EmptyDenominators(t *testing.T) {
	// Nothing predicted positive and no positives present.
	precision, recall, f1 := PrecisionRecallF1([]int{0, 0}, []float64{0.1, 0.2}, 0.5)
	assert.Equal(t, 0.0, precision)
	assert.Equal(t, 0.0, recall)
	assert.Equal(t, 0.0, f1)
}

func TestPerformanceDetectFlagsAUCDegradation(t *testing.T) {
	// Reference AUC 0.75, current AUC 0.60: a 20% relative drop.
	refLabels := []int{1, 0, 0, 0, 0}
	refProbs := []float64{0.5, 0.2, 0.3, 0.4, 0.6}
	curLabels := []int{1, 0, 0, 0, 0, 0}
	curProbs := []float64{0.5, 0.2, 0.3, 0.4, 0.6, 0.7}

	d := NewPerformanceDetector(PerformanceConfig{DegradationThreshold: 0.05})
	report, err := d.Detect(refLabels, refProbs, curLabels, curProbs)
	require.NoError(t, err)

	auc := report.Metrics[MetricROCAUC]
	require.NotNil(t, auc.Reference)
	require.NotNil(t, auc.Current)
	assert.InDelta(t, 0.75, *auc.Reference, 1e-12)
	assert.InDelta(t, 0.60, *auc.Current, 1e-12)
	require.NotNil(t, auc.RelativeChange)
	assert.InDelta(t, -0.2, *auc.RelativeChange, 1e-12)
	assert.True(t, auc.IsDegraded)
	assert.True(t, report.AnyDegraded)
	assert.Contains(t, report.DegradedMetrics(), MetricROCAUC)
}

func TestPerformanceDetectIgnoresImprovement(t *testing.T) {
	// Same slices swapped: AUC improves 0.60 -> 0.75 and must not be flagged.
	refLabels := []int{1, 0, 0, 0, 0, 0}
	refProbs := []float64{0.5, 0.2, 0.3, 0.4, 0.6, 0.7}
	curLabels := []int{1, 0, 0, 0, 0}
	curProbs := []float64{0.5, 0.2, 0.3, 0.4, 0.6}

	d := NewPerformanceDetector(PerformanceConfig{})
	report, err := d.Detect(refLabels, refProbs, curLabels, curProbs)
	require.NoError(t, err)

	auc := report.Metrics[MetricROCAUC]
	require.NotNil(t, auc.RelativeChange)
	assert.Greater(t, *auc.RelativeChange, 0.0)
	assert.False(t, auc.IsDegraded)
}

func TestPerformanceDetectSingleClassSliceIsRecordedNotDegraded(t *testing.T) {
	refLabels := []int{1, 1, 1}
	refProbs := []float64{0.7, 0.8, 0.9}
	curLabels := []int{1, 0, 1}
	curProbs := []float64{0.7, 0.2, 0.9}

	d := NewPerformanceDetector(PerformanceConfig{})
	report, err := d.Detect(refLabels, refProbs, curLabels, curProbs)
	require.NoError(t, err)

	auc := report.Metrics[MetricROCAUC]
	assert.Nil(t, auc.Reference)
	assert.NotEmpty(t, auc.Reason)
	assert.False(t, auc.IsDegraded)
}

func TestPerformanceDetectZeroReferenceMetric(t *testing.T) {
	// Reference precision is zero (nothing predicted positive), so relative
	// change is undefined and the metric is recorded with a reason.
	refLabels := []int{1, 0, 1, 0}
	refProbs := []float64{0.1, 0.2, 0.3, 0.4}
	curLabels := []int{1, 0, 1, 0}
	curProbs := []float64{0.9, 0.2, 0.8, 0.4}

	d := NewPerformanceDetector(PerformanceConfig{})
	report, err := d.Detect(refLabels, refProbs, curLabels, curProbs)
	require.NoError(t, err)

	precision := report.Metrics[MetricPrecision]
	require.NotNil(t, precision.Reference)
	assert.Equal(t, 0.0, *precision.Reference)
	assert.Nil(t, precision.RelativeChange)
	assert.NotEmpty(t, precision.Reason)
	assert.False(t, precision.IsDegraded)
}

func TestPerformanceDetectInputValidation(t *testing.T) {
	d := NewPerformanceDetector(PerformanceConfig{})

	_, err := d.Detect([]int{1, 0}, []float64{0.5}, []int{1}, []float64{0.5})
	require.Error(t, err)

	_, err = d.Detect(nil, nil, []int{1}, []float64{0.5})
	require.Error(t, err)
}
