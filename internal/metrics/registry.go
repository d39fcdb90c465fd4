// Package metrics exposes the driftwatch Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics for driftwatch
type Registry struct {
	// Drift engine metrics
	DriftRuns        *prometheus.CounterVec
	DriftedFeatures  prometheus.Gauge
	DriftPercentage  prometheus.Gauge
	AlertsBySeverity *prometheus.CounterVec
	RunDuration      prometheus.Histogram

	// Serving metrics
	Predictions     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all driftwatch metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		DriftRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_drift_runs_total",
				Help: "Total drift detection runs by outcome",
			},
			[]string{"dataset", "result"},
		),
		DriftedFeatures: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "driftwatch_drifted_features",
				Help: "Number of drifted features in the most recent run",
			},
		),
		DriftPercentage: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "driftwatch_drift_percentage",
				Help: "Drift percentage of the most recent run (0-100)",
			},
		),
		AlertsBySeverity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_alerts_total",
				Help: "Total alerts emitted by severity tier",
			},
			[]string{"severity"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "driftwatch_run_duration_seconds",
				Help:    "Duration of drift detection runs in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_predictions_total",
				Help: "Total prediction requests by risk level",
			},
			[]string{"risk_level"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driftwatch_http_request_duration_seconds",
				Help:    "HTTP request duration by endpoint and status",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"endpoint", "status"},
		),
		registry: prometheus.NewRegistry(),
	}

	r.registry.MustRegister(
		r.DriftRuns,
		r.DriftedFeatures,
		r.DriftPercentage,
		r.AlertsBySeverity,
		r.RunDuration,
		r.Predictions,
		r.RequestDuration,
	)
	return r
}

// Prometheus returns the underlying registry for the /metrics handler.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// ObserveRun records the outcome of one drift detection run.
func (r *Registry) ObserveRun(dataset string, driftDetected bool, driftedFeatures int, driftPct, seconds float64) {
	result := "no_drift"
	if driftDetected {
		result = "drift"
	}
	r.DriftRuns.WithLabelValues(dataset, result).Inc()
	r.DriftedFeatures.Set(float64(driftedFeatures))
	r.DriftPercentage.Set(driftPct)
	r.RunDuration.Observe(seconds)
}
