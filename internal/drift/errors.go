package drift

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparator failure modes. All are recoverable at the
// detector level: the feature is recorded as unavailable and the run
// continues with the remaining manifest entries.
var (
	ErrInsufficientSamples = errors.New("insufficient samples")
	ErrMissingColumn       = errors.New("column missing from dataset")
	ErrKindMismatch        = errors.New("feature kind mismatch")
)

// ComparisonError wraps a failure for a single feature comparison.
type ComparisonError struct {
	Feature string
	Err     error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("compare %s: %v", e.Feature, e.Err)
}

func (e *ComparisonError) Unwrap() error {
	return e.Err
}
