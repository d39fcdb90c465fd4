package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"driftwatch/internal/cache"
	"driftwatch/internal/dataset"
	"driftwatch/internal/drift"
	"driftwatch/internal/features"
	"driftwatch/internal/metrics"
	"driftwatch/internal/model"
	"driftwatch/internal/monitor"
	"driftwatch/internal/persistence"
)

// RiskCutoffs translate a fraud probability into a coarse risk level
type RiskCutoffs struct {
	FraudThreshold float64
	HighRisk       float64
	LowRisk        float64
}

// Handlers holds the dependencies of the HTTP endpoints
type Handlers struct {
	Model     *model.Model // nil when serving without a trained artifact
	Cutoffs   RiskCutoffs
	Monitor   *monitor.Service
	Manifest  []drift.FeatureDescriptor
	Alerts    persistence.AlertRepo
	Cache     *cache.Cache
	Metrics   *metrics.Registry
	Hub       *Hub
	Version   string
	startTime time.Time
}

// NewHandlers creates the endpoint handlers.
func NewHandlers(version string) *Handlers {
	return &Handlers{
		Version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse is the GET /health payload
type HealthResponse struct {
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	ModelLoaded   bool    `json:"model_loaded"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ModelLoaded:   h.Model != nil,
		Version:       h.Version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// PredictionResponse is the POST /predict payload
type PredictionResponse struct {
	FraudProbability float64 `json:"fraud_probability"`
	IsFraud          bool    `json:"is_fraud"`
	RiskLevel        string  `json:"risk_level"`
	PredictionID     string  `json:"prediction_id"`
	Timestamp        string  `json:"timestamp"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
}

// Predict handles POST /predict: one transaction in, fraud score out.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.Model == nil {
		h.writeError(w, http.StatusServiceUnavailable, "no model loaded")
		return
	}

	var tx features.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := validateTransaction(&tx); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	row := features.ComputeRow(tx)
	probability, err := h.Model.PredictProba(row.Numeric)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("prediction failed: %v", err))
		return
	}

	riskLevel := h.riskLevel(probability)
	if h.Metrics != nil {
		h.Metrics.Predictions.WithLabelValues(riskLevel).Inc()
	}

	h.writeJSON(w, http.StatusOK, PredictionResponse{
		FraudProbability: probability,
		IsFraud:          probability >= h.Cutoffs.FraudThreshold,
		RiskLevel:        riskLevel,
		PredictionID:     uuid.NewString(),
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
	})
}

func validateTransaction(tx *features.Transaction) error {
	if tx.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if tx.MerchantCategory == "" {
		return fmt.Errorf("merchant_category must be provided")
	}
	if tx.TransactionType == "" {
		return fmt.Errorf("transaction_type must be provided")
	}
	if tx.DeviceType == "" {
		return fmt.Errorf("device_type must be provided")
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}
	return nil
}

func (h *Handlers) riskLevel(probability float64) string {
	switch {
	case probability >= h.Cutoffs.HighRisk:
		return "high"
	case probability >= h.Cutoffs.LowRisk:
		return "medium"
	default:
		return "low"
	}
}

// DriftRunRequest is the POST /drift/run payload. Paths are resolved on the
// server host; this endpoint is an operator surface, not a public API.
type DriftRunRequest struct {
	Dataset       string `json:"dataset"`
	ReferencePath string `json:"reference_path"`
	CurrentPath   string `json:"current_path"`
}

// RunDrift handles POST /drift/run: loads the two CSV datasets, runs the
// full drift pipeline and returns the resulting alert.
func (h *Handlers) RunDrift(w http.ResponseWriter, r *http.Request) {
	var req DriftRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Dataset == "" || req.ReferencePath == "" || req.CurrentPath == "" {
		h.writeError(w, http.StatusBadRequest, "dataset, reference_path and current_path are required")
		return
	}

	ref, err := dataset.ReadCSVFile(req.ReferencePath)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("failed to load reference dataset: %v", err))
		return
	}
	cur, err := dataset.ReadCSVFile(req.CurrentPath)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("failed to load current dataset: %v", err))
		return
	}

	a, err := h.Monitor.Run(r.Context(), req.Dataset, ref, cur, h.Manifest, nil)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

// LatestAlert handles GET /alerts/latest?dataset=... with cache-first
// lookup.
func (h *Handlers) LatestAlert(w http.ResponseWriter, r *http.Request) {
	datasetName := r.URL.Query().Get("dataset")
	if datasetName == "" {
		h.writeError(w, http.StatusBadRequest, "dataset query parameter is required")
		return
	}

	if h.Cache != nil {
		if cached, err := h.Cache.LatestAlert(r.Context(), datasetName); err == nil && cached != nil {
			h.writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	if h.Alerts == nil {
		h.writeError(w, http.StatusNotFound, "no alert found")
		return
	}
	record, err := h.Alerts.Latest(r.Context(), datasetName)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		h.writeError(w, http.StatusNotFound, "no alert found")
		return
	}
	h.writeJSON(w, http.StatusOK, record.Payload)
}

// AlertFeed handles GET /ws/alerts: upgrades to a websocket and streams
// every alert produced while the connection is open.
func (h *Handlers) AlertFeed(w http.ResponseWriter, r *http.Request) {
	if h.Hub == nil {
		h.writeError(w, http.StatusServiceUnavailable, "alert feed not enabled")
		return
	}
	h.Hub.Serve(w, r)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
