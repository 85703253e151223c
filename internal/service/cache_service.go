package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/SatishMhobiya/e-commerce-backend/internal/metrics"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CacheService is the read-through layer in front of store.Cache. Concurrent
// misses on one key share a single load. Each running load holds a fill token
// that Evict marks stale, and a stale fill never stays in the cache, so a load
// racing an invalidation cannot resurrect old data. Tokens live only while
// their load runs.
type CacheService struct {
	cache   store.Cache
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *zap.Logger

	// mu guards inflight. Cache I/O happens outside it.
	mu       sync.Mutex
	inflight map[string]map[*fill]struct{}
}

// fill tracks one running load of a key.
type fill struct {
	stale bool
}

// NewCacheService creates a new cache service
func NewCacheService(cache store.Cache, m *metrics.Metrics, logger *zap.Logger) *CacheService {
	return &CacheService{
		cache:    cache,
		metrics:  m,
		logger:   logger,
		inflight: make(map[string]map[*fill]struct{}),
	}
}

// Cached returns the value under key, loading and caching it on a miss. The
// returned value may be shared with concurrent callers of the same key and
// must not be mutated.
func Cached[T any](ctx context.Context, c *CacheService, key string, load func(context.Context) (T, error)) (T, error) {
	family := keyFamily(key)

	if data, ok := c.cache.Get(ctx, key); ok {
		var value T
		err := json.Unmarshal(data, &value)
		if err == nil {
			c.metrics.RecordCacheHit(family)
			return value, nil
		}
		c.logger.Warn("Dropping undecodable cache entry",
			zap.String("key", key),
			zap.Error(err))
		c.cache.Delete(ctx, key)
	}
	c.metrics.RecordCacheMiss(family)

	// The load outlives any single caller that joins it.
	loadCtx := context.WithoutCancel(ctx)

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		f := c.begin(key)

		value, err := load(loadCtx)
		if err != nil {
			c.finish(key, f)
			return nil, err
		}

		data, err := json.Marshal(value)
		if err != nil {
			c.finish(key, f)
			c.logger.Error("Failed to encode cache entry",
				zap.String("key", key),
				zap.Error(err))
			return value, nil
		}
		if !c.commit(loadCtx, key, f, data) {
			c.metrics.RecordStaleFill(family)
			c.logger.Debug("Discarded load invalidated in flight", zap.String("key", key))
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Evict removes keys. Loads already running for them are detached so the
// next read starts a fresh load, and their results are not cached.
func (c *CacheService) Evict(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	c.mu.Lock()
	for _, key := range keys {
		for f := range c.inflight[key] {
			f.stale = true
		}
		delete(c.inflight, key)
		c.group.Forget(key)
	}
	c.mu.Unlock()

	c.cache.Delete(ctx, keys...)
}

// Len returns the number of cached entries
func (c *CacheService) Len(ctx context.Context) int {
	return c.cache.Len(ctx)
}

func (c *CacheService) begin(key string) *fill {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := &fill{}
	fills, ok := c.inflight[key]
	if !ok {
		fills = make(map[*fill]struct{})
		c.inflight[key] = fills
	}
	fills[f] = struct{}{}
	return f
}

// finish drops f and reports whether it was marked stale.
func (c *CacheService) finish(key string, f *fill) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fills, ok := c.inflight[key]; ok {
		delete(fills, f)
		if len(fills) == 0 {
			delete(c.inflight, key)
		}
	}
	return f.stale
}

// commit writes data unless f went stale. An eviction that lands while the
// write is in progress is repeated so the entry does not survive it.
func (c *CacheService) commit(ctx context.Context, key string, f *fill, data []byte) bool {
	c.mu.Lock()
	stale := f.stale
	c.mu.Unlock()
	if stale {
		c.finish(key, f)
		return false
	}

	c.cache.Set(ctx, key, data)

	if c.finish(key, f) {
		c.cache.Delete(ctx, key)
		return false
	}
	return true
}

// pending reports how many keys have a load in flight.
func (c *CacheService) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

// keyFamily collapses per-id keys into one metric label
func keyFamily(key string) string {
	for _, prefix := range []string{userOrderKeyPrefix, orderKeyPrefix, productKeyPrefix} {
		if strings.HasPrefix(key, prefix) {
			return strings.TrimSuffix(prefix, "-")
		}
	}
	return key
}
