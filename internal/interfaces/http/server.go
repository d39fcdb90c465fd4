// Package http exposes the driftwatch read/serve API: fraud predictions,
// on-demand drift runs, alert lookups, a live alert feed, health and
// Prometheus metrics.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"driftwatch/internal/metrics"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// DefaultServerConfig returns local-only defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:               "127.0.0.1",
		Port:               8080,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		IdleTimeout:        60 * time.Second,
		RateLimitPerSecond: 50,
		RateLimitBurst:     100,
	}
}

// Server is the driftwatch HTTP server
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *Handlers
	config   ServerConfig
	limiter  *rate.Limiter
}

// NewServer creates the HTTP server and wires up routes.
func NewServer(config ServerConfig, handlers *Handlers, registry *metrics.Registry) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		handlers: handlers,
		config:   config,
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimitPerSecond), config.RateLimitBurst),
	}

	s.setupRoutes(registry)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes(registry *metrics.Registry) {
	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware(registry))

	s.router.HandleFunc("/health", s.handlers.Health).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(registry.Prometheus(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.router.Handle("/predict", s.rateLimited(http.HandlerFunc(s.handlers.Predict))).Methods(http.MethodPost)
	s.router.HandleFunc("/drift/run", s.handlers.RunDrift).Methods(http.MethodPost)
	s.router.HandleFunc("/alerts/latest", s.handlers.LatestAlert).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/alerts", s.handlers.AlertFeed).Methods(http.MethodGet)
}

// rateLimited rejects requests beyond the configured prediction throughput.
func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
