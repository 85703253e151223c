package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache implements Cache on a shared Redis instance so several replicas
// see the same entries and the same invalidations. Entries are written
// without expiry. Redis failures never reach the caller: reads degrade to a
// miss and writes are logged.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisCache creates a new Redis-backed cache
func NewRedisCache(host string, port int, password string, db int, prefix string, logger *zap.Logger) (*RedisCache, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheWithClient(client, prefix, logger), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, prefix string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Has reports whether key is cached
func (c *RedisCache) Has(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		c.logger.Warn("Redis exists failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Redis get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, true
}

// Set stores a value in cache with no expiry
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, c.key(key), value, 0).Err(); err != nil {
		c.logger.Error("Redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes values from cache
func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	// A failed delete leaves stale entries behind.
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		c.logger.Error("Redis delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Len counts the entries under the cache prefix
func (c *RedisCache) Len(ctx context.Context) int {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			c.logger.Warn("Redis scan failed", zap.Error(err))
			return count
		}
		count += len(keys)
		if next == 0 {
			return count
		}
		cursor = next
	}
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
