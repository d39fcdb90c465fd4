package alert

import (
	"encoding/json"
	"fmt"
)

// Severity is the alert tier produced by the classifier
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the severity as its tier name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a tier name back into a severity.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a tier name to a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "OK":
		return SeverityOK, nil
	case "WARNING":
		return SeverityWarning, nil
	case "CRITICAL":
		return SeverityCritical, nil
	default:
		return SeverityOK, fmt.Errorf("unknown severity %q", name)
	}
}

// severityVariant is one tier of the alerting policy. Each variant carries
// its own recommendation template, so adding a tier or changing its guidance
// is a localized change.
type severityVariant struct {
	severity Severity
	// recommend renders the tier's recommendations given the context of
	// what triggered it.
	recommend func(ctx recommendContext) []string
}

// recommendContext carries the trigger details a variant may name in its
// recommendations.
type recommendContext struct {
	topFeature      string
	degradedMetrics []string
}

var severityPolicy = map[Severity]severityVariant{
	SeverityCritical: {
		severity: SeverityCritical,
		recommend: func(ctx recommendContext) []string {
			recs := []string{
				"IMMEDIATE ACTION REQUIRED: severe drift detected",
				"Trigger emergency model retraining with recent data",
				"Consider temporarily disabling automated decisions",
				"Investigate root cause of data distribution changes",
			}
			if ctx.topFeature != "" {
				recs = append(recs, fmt.Sprintf("Start investigation with feature %q (most significant shift)", ctx.topFeature))
			}
			for _, m := range ctx.degradedMetrics {
				recs = append(recs, fmt.Sprintf("Model metric %s degraded beyond threshold", m))
			}
			return recs
		},
	},
	SeverityWarning: {
		severity: SeverityWarning,
		recommend: func(ctx recommendContext) []string {
			recs := []string{
				"Monitor closely: moderate drift detected",
				"Schedule model retraining within the next evaluation cycle",
				"Review recent data collection processes",
				"Increase monitoring frequency",
			}
			if ctx.topFeature != "" {
				recs = append(recs, fmt.Sprintf("Review feature %q (most significant shift)", ctx.topFeature))
			}
			for _, m := range ctx.degradedMetrics {
				recs = append(recs, fmt.Sprintf("Model metric %s degraded beyond threshold", m))
			}
			return recs
		},
	},
	SeverityOK: {
		severity: SeverityOK,
		recommend: func(recommendContext) []string {
			return []string{
				"Continue normal operations",
				"Maintain regular monitoring schedule",
				"Document baseline performance for future comparisons",
			}
		},
	},
}
