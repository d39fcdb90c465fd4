package drift

import (
	"fmt"
	"math"
	"sort"
)

// ComparatorConfig holds the statistical knobs for feature comparison
type ComparatorConfig struct {
	SignificanceLevel float64 `yaml:"significance_level"` // Default: 0.05
	MinSampleSize     int     `yaml:"min_sample_size"`    // Default: 5
	NumBins           int     `yaml:"num_bins"`           // Default: 10 (JS binning for numeric features)
}

// DefaultComparatorConfig returns the default comparison thresholds
func DefaultComparatorConfig() ComparatorConfig {
	return ComparatorConfig{
		SignificanceLevel: 0.05,
		MinSampleSize:     5,
		NumBins:           10,
	}
}

// Comparator compares one feature's reference and current samples.
// It is stateless and safe for concurrent use.
type Comparator struct {
	config ComparatorConfig
}

// NewComparator creates a comparator with the given configuration,
// filling zero values with defaults.
func NewComparator(config ComparatorConfig) *Comparator {
	def := DefaultComparatorConfig()
	if config.SignificanceLevel <= 0 {
		config.SignificanceLevel = def.SignificanceLevel
	}
	if config.MinSampleSize <= 0 {
		config.MinSampleSize = def.MinSampleSize
	}
	if config.NumBins <= 0 {
		config.NumBins = def.NumBins
	}
	return &Comparator{config: config}
}

// CompareNumeric runs the numeric drift battery: two-sample KS test for the
// p-value, Wasserstein distance as the primary magnitude measure, and
// Jensen-Shannon divergence over equal-width bins as the secondary measure.
func (c *Comparator) CompareNumeric(feature string, ref, cur []float64) (*FeatureDriftResult, error) {
	if len(ref) < c.config.MinSampleSize || len(cur) < c.config.MinSampleSize {
		return nil, &ComparisonError{Feature: feature, Err: fmt.Errorf("%w: ref=%d cur=%d min=%d",
			ErrInsufficientSamples, len(ref), len(cur), c.config.MinSampleSize)}
	}

	refSorted := sortedCopy(ref)
	curSorted := sortedCopy(cur)

	// Constant and identical on both sides: comparison is vacuously true.
	if isConstant(refSorted) && isConstant(curSorted) && refSorted[0] == curSorted[0] {
		one := 1.0
		return &FeatureDriftResult{
			Feature:    feature,
			Kind:       Numeric,
			PValue:     &one,
			Degenerate: true,
		}, nil
	}

	stat := ksStatistic(refSorted, curSorted)
	pValue := ksPValue(stat, len(refSorted), len(curSorted))

	p, q := histogramProbs(refSorted, curSorted, c.config.NumBins)

	return &FeatureDriftResult{
		Feature:           feature,
		Kind:              Numeric,
		PValue:            &pValue,
		Statistic:         stat,
		PrimaryDistance:   wassersteinDistance(refSorted, curSorted),
		SecondaryDistance: jensenShannon(p, q),
		IsDrifted:         pValue < c.config.SignificanceLevel,
	}, nil
}

// CompareCategorical runs the categorical drift battery: chi-square over the
// union-of-categories contingency table for the p-value, PSI as the primary
// measure, and Jensen-Shannon over the category probabilities as secondary.
// Categories seen in only one sample get a zero count on the other side, so
// novel categories are surfaced rather than ignored.
func (c *Comparator) CompareCategorical(feature string, ref, cur []string) (*FeatureDriftResult, error) {
	if len(ref) < c.config.MinSampleSize || len(cur) < c.config.MinSampleSize {
		return nil, &ComparisonError{Feature: feature, Err: fmt.Errorf("%w: ref=%d cur=%d min=%d",
			ErrInsufficientSamples, len(ref), len(cur), c.config.MinSampleSize)}
	}

	categories, refCounts, curCounts := contingencyTable(ref, cur)

	// Single shared category on both sides: nothing to compare.
	if len(categories) == 1 {
		one := 1.0
		return &FeatureDriftResult{
			Feature:    feature,
			Kind:       Categorical,
			PValue:     &one,
			Degenerate: true,
		}, nil
	}

	stat, pValue, lowExpected := chiSquareTest(refCounts, curCounts)

	refProbs := smoothProbs(refCounts)
	curProbs := smoothProbs(curCounts)

	return &FeatureDriftResult{
		Feature:           feature,
		Kind:              Categorical,
		PValue:            &pValue,
		Statistic:         stat,
		PrimaryDistance:   populationStabilityIndex(refProbs, curProbs),
		SecondaryDistance: jensenShannon(refProbs, curProbs),
		IsDrifted:         pValue < c.config.SignificanceLevel,
		LowExpectedCount:  lowExpected,
	}, nil
}

// contingencyTable builds aligned count vectors over the union of observed
// categories. The category index is open: values present in only one sample
// still get a slot, since novel categories may themselves indicate drift.
func contingencyTable(ref, cur []string) (categories []string, refCounts, curCounts []float64) {
	seen := make(map[string]int)
	for _, v := range ref {
		if _, ok := seen[v]; !ok {
			seen[v] = len(categories)
			categories = append(categories, v)
		}
	}
	for _, v := range cur {
		if _, ok := seen[v]; !ok {
			seen[v] = len(categories)
			categories = append(categories, v)
		}
	}
	sort.Strings(categories)
	for i, cat := range categories {
		seen[cat] = i
	}

	refCounts = make([]float64, len(categories))
	curCounts = make([]float64, len(categories))
	for _, v := range ref {
		refCounts[seen[v]]++
	}
	for _, v := range cur {
		curCounts[seen[v]]++
	}
	return categories, refCounts, curCounts
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

func isConstant(sorted []float64) bool {
	return sorted[0] == sorted[len(sorted)-1]
}

// sanitizeNumeric drops NaN and infinite values. The detector applies this
// before dispatching to the comparator.
func sanitizeNumeric(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}
