// Package cache keeps the latest alert and drift report per dataset in
// Redis so dashboards poll the hot path without hitting PostgreSQL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"driftwatch/internal/alert"
	"driftwatch/internal/drift"
)

const (
	alertKeyPrefix  = "driftwatch:alert:latest:"
	reportKeyPrefix = "driftwatch:report:latest:"
)

// Cache wraps the Redis client for driftwatch lookups.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache over an existing Redis client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// SetLatestAlert stores the newest alert for a dataset.
func (c *Cache) SetLatestAlert(ctx context.Context, dataset string, a *alert.Alert) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := c.client.Set(ctx, alertKeyPrefix+dataset, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache alert: %w", err)
	}
	return nil
}

// LatestAlert returns the cached alert for a dataset, or nil on cache miss.
func (c *Cache) LatestAlert(ctx context.Context, dataset string) (*alert.Alert, error) {
	data, err := c.client.Get(ctx, alertKeyPrefix+dataset).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached alert: %w", err)
	}

	var a alert.Alert
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached alert: %w", err)
	}
	return &a, nil
}

// SetLatestReport stores the newest drift report for a dataset.
func (c *Cache) SetLatestReport(ctx context.Context, dataset string, report *drift.DatasetDriftReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := c.client.Set(ctx, reportKeyPrefix+dataset, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// LatestReport returns the cached drift report for a dataset, or nil on
// cache miss.
func (c *Cache) LatestReport(ctx context.Context, dataset string) (*drift.DatasetDriftReport, error) {
	data, err := c.client.Get(ctx, reportKeyPrefix+dataset).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report drift.DatasetDriftReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}
	return &report, nil
}
