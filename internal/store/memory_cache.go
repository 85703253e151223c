package store

import (
	"container/list"
	"context"
	"sync"

	"go.uber.org/zap"
)

// InMemoryCache implements Cache using an in-memory map
type InMemoryCache struct {
	data map[string]*list.Element
	// order tracks recency, front is most recently used. Only maintained when
	// maxEntries is positive.
	order      *list.List
	mu         sync.RWMutex
	maxEntries int
	logger     *zap.Logger
}

type cacheItem struct {
	key   string
	value []byte
}

// NewInMemoryCache creates a new in-memory cache. A maxEntries of zero keeps
// every entry until it is deleted, so memory grows with the number of
// distinct keys read. A positive maxEntries evicts the least recently used
// entry once the bound is reached.
func NewInMemoryCache(maxEntries int, logger *zap.Logger) *InMemoryCache {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &InMemoryCache{
		data:       make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Has reports whether key is cached
func (c *InMemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.data[key]
	return exists
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.maxEntries == 0 {
		c.mu.RLock()
		defer c.mu.RUnlock()
	} else {
		c.mu.Lock()
		defer c.mu.Unlock()
	}

	elem, exists := c.data[key]
	if !exists {
		return nil, false
	}
	if c.maxEntries > 0 {
		c.order.MoveToFront(elem)
	}

	return elem.Value.(*cacheItem).value, true
}

// Set stores a value in cache
func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.data[key]; exists {
		elem.Value.(*cacheItem).value = value
		c.order.MoveToFront(elem)
		return
	}

	if c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.evictOldest()
	}

	c.data[key] = c.order.PushFront(&cacheItem{key: key, value: value})
}

// Delete removes values from cache
func (c *InMemoryCache) Delete(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if elem, exists := c.data[key]; exists {
			c.order.Remove(elem)
			delete(c.data, key)
		}
	}
}

// Len returns the number of items in cache
func (c *InMemoryCache) Len(ctx context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Ping always succeeds for the in-memory cache
func (c *InMemoryCache) Ping(ctx context.Context) error {
	return nil
}

// evictOldest removes the least recently used entry. Caller holds mu.
func (c *InMemoryCache) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	item := elem.Value.(*cacheItem)
	c.order.Remove(elem)
	delete(c.data, item.key)

	c.logger.Debug("Evicted cache entry",
		zap.String("key", item.key),
		zap.Int("max_entries", c.maxEntries))
}
