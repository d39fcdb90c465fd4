// Package config loads the driftwatch application configuration from YAML
// with environment variable overrides and validated defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"driftwatch/internal/alert"
	"driftwatch/internal/drift"
)

// Config is the full application configuration
type Config struct {
	Drift       drift.DetectorConfig    `yaml:"drift"`
	Performance drift.PerformanceConfig `yaml:"performance"`
	Alerts      alert.PolicyConfig      `yaml:"alerts"`
	Model       ModelSection            `yaml:"model"`
	Server      ServerSection           `yaml:"server"`
	Database    DatabaseSection         `yaml:"database"`
	Redis       RedisSection            `yaml:"redis"`
	Scheduler   SchedulerSection        `yaml:"scheduler"`
}

// ModelSection holds classifier artifact and serving settings
type ModelSection struct {
	ArtifactPath    string  `yaml:"artifact_path"`
	ManifestPath    string  `yaml:"manifest_path"`
	FraudThreshold  float64 `yaml:"fraud_threshold"`   // Default: 0.5
	HighRiskCutoff  float64 `yaml:"high_risk_cutoff"`  // Default: 0.8
	LowRiskCutoff   float64 `yaml:"low_risk_cutoff"`   // Default: 0.3
}

// ServerSection holds the HTTP API settings
type ServerSection struct {
	Host                string  `yaml:"host"`
	Port                int     `yaml:"port"`
	ReadTimeoutSeconds  int     `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int     `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int     `yaml:"idle_timeout_seconds"`
	RateLimitPerSecond  float64 `yaml:"rate_limit_per_second"`
	RateLimitBurst      int     `yaml:"rate_limit_burst"`
}

// DatabaseSection holds PostgreSQL connection settings
type DatabaseSection struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	SSLMode         string `yaml:"sslmode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
	QueryTimeoutSec int    `yaml:"query_timeout_seconds"`
}

// DSN builds the PostgreSQL connection string.
func (d DatabaseSection) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// QueryTimeout returns the per-query timeout.
func (d DatabaseSection) QueryTimeout() time.Duration {
	return time.Duration(d.QueryTimeoutSec) * time.Second
}

// RedisSection holds cache settings
type RedisSection struct {
	Addr              string `yaml:"addr"`
	DB                int    `yaml:"db"`
	DefaultTTLSeconds int    `yaml:"default_ttl_seconds"`
}

// TTL returns the default cache entry lifetime.
func (r RedisSection) TTL() time.Duration {
	return time.Duration(r.DefaultTTLSeconds) * time.Second
}

// SchedulerSection points at the scheduled job definitions
type SchedulerSection struct {
	JobsFile string `yaml:"jobs_file"`
}

// Load reads configuration from a YAML file if it exists, applies
// environment variable overrides, then defaults, then validates.
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		}
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// applyEnvOverrides lets deployment environments override connection
// settings without editing the config file.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("DRIFTWATCH_DB_HOST"); v != "" {
		config.Database.Host = v
	}
	if v := os.Getenv("DRIFTWATCH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}
	if v := os.Getenv("DRIFTWATCH_DB_USER"); v != "" {
		config.Database.User = v
	}
	if v := os.Getenv("DRIFTWATCH_DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("DRIFTWATCH_DB_NAME"); v != "" {
		config.Database.DBName = v
	}
	if v := os.Getenv("DRIFTWATCH_REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("DRIFTWATCH_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
}

func applyDefaults(config *Config) {
	if config.Drift.Comparator.SignificanceLevel <= 0 {
		config.Drift.Comparator = drift.DefaultComparatorConfig()
	}
	if config.Drift.DatasetThresholdPct <= 0 {
		config.Drift.DatasetThresholdPct = drift.DefaultDetectorConfig().DatasetThresholdPct
	}
	if config.Performance.DegradationThreshold <= 0 {
		config.Performance = drift.DefaultPerformanceConfig()
	}
	if config.Alerts.WarningPct <= 0 {
		config.Alerts = alert.DefaultPolicyConfig()
	}

	if config.Model.ArtifactPath == "" {
		config.Model.ArtifactPath = "artifacts/model.json"
	}
	if config.Model.FraudThreshold <= 0 {
		config.Model.FraudThreshold = 0.5
	}
	if config.Model.HighRiskCutoff <= 0 {
		config.Model.HighRiskCutoff = 0.8
	}
	if config.Model.LowRiskCutoff <= 0 {
		config.Model.LowRiskCutoff = 0.3
	}

	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.ReadTimeoutSeconds == 0 {
		config.Server.ReadTimeoutSeconds = 10
	}
	if config.Server.WriteTimeoutSeconds == 0 {
		config.Server.WriteTimeoutSeconds = 10
	}
	if config.Server.IdleTimeoutSeconds == 0 {
		config.Server.IdleTimeoutSeconds = 60
	}
	if config.Server.RateLimitPerSecond <= 0 {
		config.Server.RateLimitPerSecond = 50
	}
	if config.Server.RateLimitBurst <= 0 {
		config.Server.RateLimitBurst = 100
	}

	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
	if config.Database.User == "" {
		config.Database.User = "driftwatch"
	}
	if config.Database.DBName == "" {
		config.Database.DBName = "driftwatch"
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = "disable"
	}
	if config.Database.MaxOpenConns == 0 {
		config.Database.MaxOpenConns = 10
	}
	if config.Database.MaxIdleConns == 0 {
		config.Database.MaxIdleConns = 5
	}
	if config.Database.ConnMaxLifetime == 0 {
		config.Database.ConnMaxLifetime = 30
	}
	if config.Database.QueryTimeoutSec == 0 {
		config.Database.QueryTimeoutSec = 5
	}

	if config.Redis.Addr == "" {
		config.Redis.Addr = "localhost:6379"
	}
	if config.Redis.DefaultTTLSeconds == 0 {
		config.Redis.DefaultTTLSeconds = 300
	}

	if config.Scheduler.JobsFile == "" {
		config.Scheduler.JobsFile = "config/jobs.yaml"
	}
}

// Validate rejects configurations that would produce misleading reports.
func (c *Config) Validate() error {
	if c.Drift.Comparator.SignificanceLevel <= 0 || c.Drift.Comparator.SignificanceLevel >= 1 {
		return fmt.Errorf("drift significance_level must be in (0,1), got %f", c.Drift.Comparator.SignificanceLevel)
	}
	if c.Drift.DatasetThresholdPct < 0 || c.Drift.DatasetThresholdPct > 100 {
		return fmt.Errorf("drift dataset_threshold_pct must be in [0,100], got %f", c.Drift.DatasetThresholdPct)
	}
	if c.Alerts.WarningPct >= c.Alerts.CriticalPct {
		return fmt.Errorf("alerts warning_pct (%f) must be below critical_pct (%f)", c.Alerts.WarningPct, c.Alerts.CriticalPct)
	}
	if c.Model.FraudThreshold <= 0 || c.Model.FraudThreshold >= 1 {
		return fmt.Errorf("model fraud_threshold must be in (0,1), got %f", c.Model.FraudThreshold)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1,65535], got %d", c.Server.Port)
	}
	return nil
}
