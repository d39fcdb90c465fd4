package drift

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"driftwatch/internal/dataset"
)

// DetectorConfig holds dataset-level detection thresholds
type DetectorConfig struct {
	Comparator          ComparatorConfig `yaml:"comparator"`
	DatasetThresholdPct float64          `yaml:"dataset_threshold_pct"` // Default: 25 (policy knob, not statistically derived)
}

// DefaultDetectorConfig returns the default detection thresholds
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Comparator:          DefaultComparatorConfig(),
		DatasetThresholdPct: 25.0,
	}
}

// Detector runs feature-by-feature drift detection over a manifest and
// aggregates the results into a dataset-level report. It holds no state
// across calls and is safe to invoke concurrently for independent
// dataset pairs.
type Detector struct {
	config     DetectorConfig
	comparator *Comparator
}

// NewDetector creates a detector with the given configuration,
// filling zero values with defaults.
func NewDetector(config DetectorConfig) *Detector {
	if config.DatasetThresholdPct <= 0 {
		config.DatasetThresholdPct = 25.0
	}
	return &Detector{
		config:     config,
		comparator: NewComparator(config.Comparator),
	}
}

// Detect compares the reference and current tables feature by feature per
// the manifest. Failures are isolated per feature: a missing column,
// insufficient sample, or degenerate distribution is recorded as unavailable
// and excluded from the drift denominator, and the run continues. Results
// are deterministic for fixed inputs.
func (d *Detector) Detect(ref, cur *dataset.Table, manifest []FeatureDescriptor) (*DatasetDriftReport, error) {
	if len(manifest) == 0 {
		return nil, fmt.Errorf("empty feature manifest")
	}

	report := &DatasetDriftReport{GeneratedAt: time.Now().UTC()}

	for _, fd := range manifest {
		result, err := d.compareFeature(ref, cur, fd)
		if err != nil {
			report.Unavailable = append(report.Unavailable, UnavailableFeature{
				Name:   fd.Name,
				Reason: unavailableReason(err),
			})
			log.Warn().Str("feature", fd.Name).Err(err).Msg("feature unavailable for drift evaluation")
			continue
		}
		if result.Degenerate {
			report.Unavailable = append(report.Unavailable, UnavailableFeature{
				Name:   fd.Name,
				Reason: "degenerate_distribution",
			})
			continue
		}
		report.Results = append(report.Results, *result)
		if result.IsDrifted {
			report.DriftCount++
		}
	}

	// Rank by descending 1 - p_value: worst offenders first.
	sort.SliceStable(report.Results, func(i, j int) bool {
		pi, pj := *report.Results[i].PValue, *report.Results[j].PValue
		if pi != pj {
			return pi < pj
		}
		return report.Results[i].Feature < report.Results[j].Feature
	})

	report.TotalFeatures = len(report.Results)
	if report.TotalFeatures > 0 {
		report.DriftPercentage = 100.0 * float64(report.DriftCount) / float64(report.TotalFeatures)
	}
	report.OverallDriftDetected = report.DriftPercentage > d.config.DatasetThresholdPct

	return report, nil
}

// compareFeature extracts one feature from both tables and dispatches to the
// comparator by declared kind. A panic in a single comparison is contained
// here so one malformed column cannot hide drift signals for the rest of
// the manifest.
func (d *Detector) compareFeature(ref, cur *dataset.Table, fd FeatureDescriptor) (result *FeatureDriftResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ComparisonError{Feature: fd.Name, Err: fmt.Errorf("comparison panic: %v", r)}
		}
	}()

	refCol, ok := ref.Column(fd.Name)
	if !ok {
		return nil, &ComparisonError{Feature: fd.Name, Err: fmt.Errorf("%w: reference", ErrMissingColumn)}
	}
	curCol, ok := cur.Column(fd.Name)
	if !ok {
		return nil, &ComparisonError{Feature: fd.Name, Err: fmt.Errorf("%w: current", ErrMissingColumn)}
	}

	switch fd.Kind {
	case Numeric:
		return d.comparator.CompareNumeric(fd.Name, sanitizeNumeric(refCol.Floats()), sanitizeNumeric(curCol.Floats()))
	case Categorical:
		return d.comparator.CompareCategorical(fd.Name, refCol.Labels(), curCol.Labels())
	default:
		return nil, &ComparisonError{Feature: fd.Name, Err: fmt.Errorf("%w: %q", ErrKindMismatch, fd.Kind)}
	}
}

// unavailableReason maps a comparison error to the stable reason string
// surfaced in the report.
func unavailableReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrInsufficientSamples):
		return "insufficient_samples"
	case errors.Is(err, ErrKindMismatch):
		return "kind_mismatch"
	default:
		return fmt.Sprintf("error: %v", err)
	}
}
