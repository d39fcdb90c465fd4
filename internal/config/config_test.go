package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Drift.Comparator.SignificanceLevel)
	assert.Equal(t, 25.0, cfg.Drift.DatasetThresholdPct)
	assert.Equal(t, 0.05, cfg.Performance.DegradationThreshold)
	assert.Equal(t, 25.0, cfg.Alerts.WarningPct)
	assert.Equal(t, 50.0, cfg.Alerts.CriticalPct)
	assert.Equal(t, 0.5, cfg.Model.FraudThreshold)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "config/jobs.yaml", cfg.Scheduler.JobsFile)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
drift:
  comparator:
    significance_level: 0.01
  dataset_threshold_pct: 40
alerts:
  warning_pct: 30
  critical_pct: 70
server:
  port: 9090
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.01, cfg.Drift.Comparator.SignificanceLevel)
	assert.Equal(t, 40.0, cfg.Drift.DatasetThresholdPct)
	assert.Equal(t, 30.0, cfg.Alerts.WarningPct)
	assert.Equal(t, 70.0, cfg.Alerts.CriticalPct)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched sections still get defaults.
	assert.Equal(t, 0.05, cfg.Performance.DegradationThreshold)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DRIFTWATCH_DB_HOST", "db.internal")
	t.Setenv("DRIFTWATCH_DB_PORT", "5433")
	t.Setenv("DRIFTWATCH_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("DRIFTWATCH_HTTP_PORT", "8888")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 8888, cfg.Server.Port)
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"significance out of range", func(c *Config) { c.Drift.Comparator.SignificanceLevel = 1.5 }},
		{"dataset threshold out of range", func(c *Config) { c.Drift.DatasetThresholdPct = 150 }},
		{"warning above critical", func(c *Config) { c.Alerts.WarningPct = 80; c.Alerts.CriticalPct = 50 }},
		{"fraud threshold out of range", func(c *Config) { c.Model.FraudThreshold = 2 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseSection{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "db", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=db sslmode=disable", d.DSN())
}
