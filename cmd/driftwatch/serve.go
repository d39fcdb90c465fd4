package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"driftwatch/internal/cache"
	"driftwatch/internal/config"
	httpapi "driftwatch/internal/interfaces/http"
	"driftwatch/internal/metrics"
	"driftwatch/internal/model"
	"driftwatch/internal/monitor"
	"driftwatch/internal/persistence/postgres"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction and drift monitoring API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			descriptors, err := loadManifest(cfg)
			if err != nil {
				return err
			}

			registry := metrics.NewRegistry()
			deps := monitor.Deps{Metrics: registry}

			// Storage is optional: the API still serves predictions and
			// drift runs when postgres or redis are unreachable.
			if db, err := postgres.Connect(cfg.Database.DSN(), cfg.Database.MaxOpenConns,
				cfg.Database.MaxIdleConns, time.Duration(cfg.Database.ConnMaxLifetime)*time.Minute); err != nil {
				log.Warn().Err(err).Msg("postgres unavailable, alerts will not be persisted")
			} else {
				if err := postgres.EnsureSchema(db); err != nil {
					return err
				}
				deps.Alerts = postgres.NewAlertRepo(db, cfg.Database.QueryTimeout())
				deps.Runs = postgres.NewDriftRunRepo(db, cfg.Database.QueryTimeout())
				defer db.Close()
			}

			redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
			if err := redisClient.Ping(cmd.Context()).Err(); err != nil {
				log.Warn().Err(err).Msg("redis unavailable, alert cache disabled")
			} else {
				deps.Cache = cache.New(redisClient, cfg.Redis.TTL())
				defer redisClient.Close()
			}

			service := monitor.New(cfg.Drift, cfg.Performance, cfg.Alerts, deps)

			hub := httpapi.NewHub()
			defer hub.Close()
			service.OnAlert(hub.Broadcast)

			handlers := httpapi.NewHandlers(version)
			handlers.Cutoffs = httpapi.RiskCutoffs{
				FraudThreshold: cfg.Model.FraudThreshold,
				HighRisk:       cfg.Model.HighRiskCutoff,
				LowRisk:        cfg.Model.LowRiskCutoff,
			}
			handlers.Monitor = service
			handlers.Manifest = descriptors
			handlers.Alerts = deps.Alerts
			handlers.Cache = deps.Cache
			handlers.Metrics = registry
			handlers.Hub = hub

			if m, err := model.Load(cfg.Model.ArtifactPath); err != nil {
				log.Warn().Err(err).Str("artifact", cfg.Model.ArtifactPath).Msg("no model artifact, /predict disabled")
			} else {
				handlers.Model = m
			}

			server := httpapi.NewServer(httpapi.ServerConfig{
				Host:               cfg.Server.Host,
				Port:               cfg.Server.Port,
				ReadTimeout:        time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
				WriteTimeout:       time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
				IdleTimeout:        time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
				RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
				RateLimitBurst:     cfg.Server.RateLimitBurst,
			}, handlers, registry)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	return cmd
}
