// Package monitor orchestrates a drift run end to end: detection,
// classification, persistence, caching and notification. The HTTP API, the
// scheduler and the CLI all go through the same Service so a drift run
// behaves identically regardless of how it was triggered.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"driftwatch/internal/alert"
	"driftwatch/internal/cache"
	"driftwatch/internal/dataset"
	"driftwatch/internal/drift"
	"driftwatch/internal/metrics"
	"driftwatch/internal/persistence"
)

// PerformanceInput carries aligned (label, probability) pairs for the
// optional concept-drift check.
type PerformanceInput struct {
	ReferenceLabels []int
	ReferenceProbs  []float64
	CurrentLabels   []int
	CurrentProbs    []float64
}

// Deps are the optional collaborators of the service. Nil fields are
// skipped: a CLI run without a database still produces a full alert.
type Deps struct {
	Alerts  persistence.AlertRepo
	Runs    persistence.DriftRunRepo
	Cache   *cache.Cache
	Metrics *metrics.Registry
}

// Service runs drift detection and fans the alert out to sinks.
type Service struct {
	detector     *drift.Detector
	perfDetector *drift.PerformanceDetector
	classifier   *alert.Classifier
	deps         Deps
	breaker      *gobreaker.CircuitBreaker
	onAlert      []func(*alert.Alert)
}

// New creates a monitoring service. Persistence writes go through a circuit
// breaker so a struggling database degrades alert storage, not alerting.
func New(detectorCfg drift.DetectorConfig, perfCfg drift.PerformanceConfig, policy alert.PolicyConfig, deps Deps) *Service {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "drift-persistence",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &Service{
		detector:     drift.NewDetector(detectorCfg),
		perfDetector: drift.NewPerformanceDetector(perfCfg),
		classifier:   alert.NewClassifier(policy),
		deps:         deps,
		breaker:      breaker,
	}
}

// OnAlert registers a callback invoked for every produced alert. Used by the
// websocket feed.
func (s *Service) OnAlert(fn func(*alert.Alert)) {
	s.onAlert = append(s.onAlert, fn)
}

// ShouldRetrain reports whether the alert crosses the retraining policy.
func (s *Service) ShouldRetrain(a *alert.Alert) bool {
	return s.classifier.ShouldRetrain(a)
}

// Run executes one full drift check. Persistence and cache failures are
// logged but never fail the run: the alert is the product, storage is a
// side effect.
func (s *Service) Run(ctx context.Context, datasetName string, ref, cur *dataset.Table, manifest []drift.FeatureDescriptor, perfInput *PerformanceInput) (*alert.Alert, error) {
	start := time.Now()

	report, err := s.detector.Detect(ref, cur, manifest)
	if err != nil {
		return nil, fmt.Errorf("drift detection failed for %s: %w", datasetName, err)
	}

	var perfReport *drift.PerformanceDriftReport
	if perfInput != nil {
		perfReport, err = s.perfDetector.Detect(
			perfInput.ReferenceLabels, perfInput.ReferenceProbs,
			perfInput.CurrentLabels, perfInput.CurrentProbs)
		if err != nil {
			return nil, fmt.Errorf("performance drift detection failed for %s: %w", datasetName, err)
		}
	}

	a := s.classifier.Classify(report, perfReport)
	a.Dataset = datasetName

	log.Info().
		Str("dataset", datasetName).
		Str("severity", a.Severity.String()).
		Int("drifted", report.DriftCount).
		Int("evaluated", report.TotalFeatures).
		Int("unavailable", len(report.Unavailable)).
		Float64("drift_pct", report.DriftPercentage).
		Msg("drift run complete")

	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveRun(datasetName, report.OverallDriftDetected, report.DriftCount,
			report.DriftPercentage, time.Since(start).Seconds())
		s.deps.Metrics.AlertsBySeverity.WithLabelValues(a.Severity.String()).Inc()
	}

	s.persist(ctx, datasetName, a, report, perfReport)

	for _, fn := range s.onAlert {
		fn(a)
	}
	return a, nil
}

func (s *Service) persist(ctx context.Context, datasetName string, a *alert.Alert, report *drift.DatasetDriftReport, perfReport *drift.PerformanceDriftReport) {
	if s.deps.Alerts != nil {
		_, err := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.deps.Alerts.Insert(ctx, persistence.AlertRecord{
				ID:          a.ID,
				Dataset:     datasetName,
				Severity:    a.Severity.String(),
				Payload:     a,
				GeneratedAt: a.GeneratedAt,
			})
		})
		if err != nil {
			log.Error().Err(err).Str("dataset", datasetName).Msg("failed to persist alert")
		}
	}

	if s.deps.Runs != nil {
		_, err := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.deps.Runs.Insert(ctx, persistence.DriftRunRecord{
				ID:          uuid.NewString(),
				Dataset:     datasetName,
				Report:      report,
				Performance: perfReport,
				GeneratedAt: report.GeneratedAt,
			})
		})
		if err != nil {
			log.Error().Err(err).Str("dataset", datasetName).Msg("failed to persist drift run")
		}
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.SetLatestAlert(ctx, datasetName, a); err != nil {
			log.Error().Err(err).Str("dataset", datasetName).Msg("failed to cache alert")
		}
		if err := s.deps.Cache.SetLatestReport(ctx, datasetName, report); err != nil {
			log.Error().Err(err).Str("dataset", datasetName).Msg("failed to cache report")
		}
	}
}
