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
	"driftwatch/internal/metrics"
	"driftwatch/internal/monitor"
	"driftwatch/internal/persistence/postgres"
	"driftwatch/internal/scheduler"
)

func newScheduleCmd() *cobra.Command {
	var jobsFile string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run periodic drift checks from a job file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			descriptors, err := loadManifest(cfg)
			if err != nil {
				return err
			}
			if jobsFile == "" {
				jobsFile = cfg.Scheduler.JobsFile
			}

			deps := monitor.Deps{Metrics: metrics.NewRegistry()}
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
			sched, err := scheduler.New(jobsFile, service, descriptors)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-stop
				log.Info().Str("signal", sig.String()).Msg("stopping scheduler")
				cancel()
			}()

			return sched.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&jobsFile, "jobs", "", "job file path (defaults to scheduler.jobs_file)")
	return cmd
}
