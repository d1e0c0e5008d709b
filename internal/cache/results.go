// Package cache provides an optional Redis-backed cache for experiment
// result bundles, so re-opening a previously reviewed run does not cost a
// backend round trip. Entries are replaced wholesale on refresh, never
// mutated in place, and every cache failure degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/campaign-intel/internal/config"
	"github.com/ignite/campaign-intel/internal/insight"
	"github.com/ignite/campaign-intel/internal/pkg/logger"
)

const keyPrefix = "experiment:results:"

// ResultsCache caches results bundles by run ID with a TTL.
type ResultsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a ResultsCache from configuration and verifies connectivity.
func New(ctx context.Context, cfg config.CacheConfig) (*ResultsCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &ResultsCache{rdb: rdb, ttl: cfg.TTL()}, nil
}

// NewWithClient wraps an existing Redis client (useful for testing).
func NewWithClient(rdb *redis.Client, ttl time.Duration) *ResultsCache {
	return &ResultsCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached bundle for a run, or (nil, false) on miss.
// Redis errors and decode failures are logged and treated as misses.
func (c *ResultsCache) Get(ctx context.Context, runID string) (*insight.ResultsBundle, bool) {
	data, err := c.rdb.Get(ctx, keyPrefix+runID).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("cache: get failed", "run_id", runID, "error", err)
		}
		return nil, false
	}

	var bundle insight.ResultsBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		logger.Warn("cache: corrupt entry dropped", "run_id", runID, "error", err)
		c.rdb.Del(ctx, keyPrefix+runID)
		return nil, false
	}
	bundle.Normalize()
	return &bundle, true
}

// Put stores a bundle under its run ID, replacing any previous entry.
// Failures are logged and ignored; the cache is never load-bearing.
func (c *ResultsCache) Put(ctx context.Context, runID string, bundle *insight.ResultsBundle) {
	data, err := json.Marshal(bundle)
	if err != nil {
		logger.Warn("cache: marshal failed", "run_id", runID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+runID, data, c.ttl).Err(); err != nil {
		logger.Warn("cache: put failed", "run_id", runID, "error", err)
	}
}

// Invalidate removes the entry for a run, if any.
func (c *ResultsCache) Invalidate(ctx context.Context, runID string) {
	if err := c.rdb.Del(ctx, keyPrefix+runID).Err(); err != nil {
		logger.Warn("cache: invalidate failed", "run_id", runID, "error", err)
	}
}

// Close releases the underlying Redis connection.
func (c *ResultsCache) Close() error {
	return c.rdb.Close()
}
