// Package cache is a Redis-backed query result cache with singleflight
// collapsing, so one ranking run serves all concurrent identical queries.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/decimalpack/Static-Website-Search/internal/searcher/ranker"
	"github.com/decimalpack/Static-Website-Search/pkg/config"
	pkgredis "github.com/decimalpack/Static-Website-Search/pkg/redis"
)

const keyPrefix = "search:"

// Store is the slice of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// QueryCache caches ranked results keyed by the normalized word set and
// limit.
type QueryCache struct {
	client Store
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(client Store, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached result for the word set, if present.
func (c *QueryCache) Get(ctx context.Context, words []string, limit int) (*ranker.Ranked, bool) {
	key := c.buildKey(words, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result ranker.Ranked
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

// Set stores the result under the word set's key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, words []string, limit int, result *ranker.Ranked) {
	key := c.buildKey(words, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and stores it.
// Concurrent callers with the same key share one computeFn call. The
// second return value reports whether the result came from the cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	words []string,
	limit int,
	computeFn func() (*ranker.Ranked, error),
) (*ranker.Ranked, bool, error) {
	if result, ok := c.Get(ctx, words, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(words, limit)
	var recheckHit bool
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have filled the entry between the check
		// above and winning the flight.
		if result, ok := c.Get(ctx, words, limit); ok {
			recheckHit = true
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, words, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*ranker.Ranked), recheckHit, nil
}

// Invalidate drops every cached search result, used after the index is
// rebuilt.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns process-local hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the sorted word set and the limit. Word order in the
// query does not change the score, so "go fast" and "fast go" share an
// entry.
func (c *QueryCache) buildKey(words []string, limit int) string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Strings(sorted)
	raw := fmt.Sprintf("%s:limit=%d", strings.Join(sorted, ","), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
