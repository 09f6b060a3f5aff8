// Package cache holds the Redis-backed dashboard metrics cache.
//
// Aggregation re-reads every lead/sale/cost row for the selection, so
// identical filter requests within a short window are served from Redis.
// The cache is strictly optional: a nil client disables it and all lookups
// miss.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinichq/admin-api/internal/domain"
	"github.com/clinichq/admin-api/internal/metrics"
	"github.com/clinichq/admin-api/internal/pkg/logger"
)

// MetricsCache caches aggregated dashboard reports keyed by filter.
type MetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMetricsCache creates a metrics cache. client may be nil (cache off).
func NewMetricsCache(client *redis.Client, ttl time.Duration) *MetricsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MetricsCache{client: client, ttl: ttl}
}

// Get returns the cached report for the filter, or ok=false on miss,
// disabled cache, or any Redis/decode failure. Cache errors are logged and
// treated as misses; the dashboard must never fail because Redis did.
func (c *MetricsCache) Get(ctx context.Context, f domain.DashboardFilters) (*metrics.Report, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, f.CacheKey()).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("metrics cache get failed", "error", err)
		return nil, false
	}
	var report metrics.Report
	if err := json.Unmarshal(data, &report); err != nil {
		logger.Warn("metrics cache decode failed", "error", err)
		return nil, false
	}
	return &report, true
}

// Put stores the report under the filter's key. Failures are logged only.
func (c *MetricsCache) Put(ctx context.Context, f domain.DashboardFilters, report *metrics.Report) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		logger.Warn("metrics cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, f.CacheKey(), data, c.ttl).Err(); err != nil {
		logger.Warn("metrics cache put failed", "error", err)
	}
}

// Invalidate drops every cached report. Called after imports and dedup runs
// change the underlying rows.
func (c *MetricsCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, "metrics:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("metrics cache invalidate failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn("metrics cache scan failed", "error", err)
	}
}
