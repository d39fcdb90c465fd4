// Package scheduler runs periodic drift checks from a YAML job file. Each
// job names a dataset pair and an interval; every tick goes through the
// shared monitor.Service so scheduled runs match API-triggered ones.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"driftwatch/internal/dataset"
	"driftwatch/internal/drift"
	"driftwatch/internal/monitor"
)

// Duration accepts Go duration strings ("15m", "1h") in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Job is one scheduled drift check.
type Job struct {
	Name          string   `yaml:"name"`
	Dataset       string   `yaml:"dataset"`
	ReferencePath string   `yaml:"reference_path"`
	CurrentPath   string   `yaml:"current_path"`
	Interval      Duration `yaml:"interval"`
	Enabled       bool     `yaml:"enabled"`
}

// Config is the scheduler job file.
type Config struct {
	Jobs []Job `yaml:"jobs"`
}

// JobResult records one job execution for status reporting.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Severity  string        `json:"severity,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Status is a snapshot of the scheduler state.
type Status struct {
	Running      bool        `json:"running"`
	EnabledJobs  int         `json:"enabled_jobs"`
	DisabledJobs int         `json:"disabled_jobs"`
	LastResults  []JobResult `json:"last_results"`
	Uptime       string      `json:"uptime"`
}

// Scheduler drives the configured jobs.
type Scheduler struct {
	config    Config
	service   *monitor.Service
	manifest  []drift.FeatureDescriptor
	startTime time.Time

	mu          sync.Mutex
	running     bool
	lastResults map[string]JobResult
}

// New creates a scheduler from a job file.
func New(configPath string, service *monitor.Service, manifest []drift.FeatureDescriptor) (*Scheduler, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler config: %w", err)
	}
	return &Scheduler{
		config:      config,
		service:     service,
		manifest:    manifest,
		lastResults: make(map[string]JobResult),
	}, nil
}

func loadConfig(configPath string) (Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	if err != nil {
		return config, fmt.Errorf("failed to read job file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse job file: %w", err)
	}

	for i := range config.Jobs {
		job := &config.Jobs[i]
		if job.Name == "" {
			return config, fmt.Errorf("job %d: name is required", i)
		}
		if job.Dataset == "" {
			return config, fmt.Errorf("job %s: dataset is required", job.Name)
		}
		if job.ReferencePath == "" || job.CurrentPath == "" {
			return config, fmt.Errorf("job %s: reference_path and current_path are required", job.Name)
		}
		if job.Interval <= 0 {
			job.Interval = Duration(15 * time.Minute)
		}
	}
	return config, nil
}

// Jobs returns the configured jobs.
func (s *Scheduler) Jobs() []Job {
	return s.config.Jobs
}

// Run executes every enabled job on its interval until ctx is cancelled.
// Each job fires once immediately on start.
func (s *Scheduler) Run(ctx context.Context) error {
	enabled := 0
	for _, job := range s.config.Jobs {
		if job.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("no enabled jobs in scheduler config")
	}

	s.mu.Lock()
	s.running = true
	s.startTime = time.Now()
	s.mu.Unlock()

	log.Info().Int("jobs", enabled).Msg("scheduler starting")

	var wg sync.WaitGroup
	for _, job := range s.config.Jobs {
		if !job.Enabled {
			log.Debug().Str("job", job.Name).Msg("job disabled, skipping")
			continue
		}
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.runJobLoop(ctx, job)
		}(job)
	}
	wg.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	log.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) runJobLoop(ctx context.Context, job Job) {
	ticker := time.NewTicker(time.Duration(job.Interval))
	defer ticker.Stop()

	s.executeJob(ctx, job)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.executeJob(ctx, job)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job Job) {
	start := time.Now()
	result := JobResult{JobName: job.Name, StartTime: start}

	a, err := s.runOnce(ctx, job)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		log.Error().Err(err).Str("job", job.Name).Msg("scheduled drift check failed")
	} else {
		result.Success = true
		result.Severity = a
		log.Info().
			Str("job", job.Name).
			Str("severity", a).
			Dur("elapsed", result.Duration).
			Msg("scheduled drift check complete")
	}

	s.mu.Lock()
	s.lastResults[job.Name] = result
	s.mu.Unlock()
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) (string, error) {
	ref, err := dataset.ReadCSVFile(job.ReferencePath)
	if err != nil {
		return "", fmt.Errorf("load reference: %w", err)
	}
	cur, err := dataset.ReadCSVFile(job.CurrentPath)
	if err != nil {
		return "", fmt.Errorf("load current: %w", err)
	}

	a, err := s.service.Run(ctx, job.Dataset, ref, cur, s.manifest, nil)
	if err != nil {
		return "", err
	}
	return a.Severity.String(), nil
}

// Status reports the current scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{Running: s.running}
	for _, job := range s.config.Jobs {
		if job.Enabled {
			status.EnabledJobs++
		} else {
			status.DisabledJobs++
		}
	}
	for _, result := range s.lastResults {
		status.LastResults = append(status.LastResults, result)
	}
	if s.running {
		status.Uptime = time.Since(s.startTime).Round(time.Second).String()
	}
	return status
}
