package service

import (
	"context"
	"fmt"

	"github.com/SatishMhobiya/e-commerce-backend/internal/metrics"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"go.uber.org/zap"
)

// Cache keys. Clients and other replicas sharing the cache rely on these
// exact names.
const (
	KeyLatestProducts    = "latestProducts"
	KeyProductCategories = "productCategories"
	KeyAdminProducts     = "adminProducts"
	KeyAdminOrders       = "admin-orders"

	productKeyPrefix   = "product-"
	userOrderKeyPrefix = "user-order-"
	orderKeyPrefix     = "order-"
)

// ProductKey is the cache key of one product's details
func ProductKey(productID string) string {
	return productKeyPrefix + productID
}

// UserOrdersKey is the cache key of one user's order list
func UserOrdersKey(userID string) string {
	return userOrderKeyPrefix + userID
}

// OrderKey is the cache key of one order's details
func OrderKey(orderID string) string {
	return orderKeyPrefix + orderID
}

// KeysFor maps a change to every cache key it makes stale. Keys are built
// even when an id is empty. The Admin flag does not affect the result.
func KeysFor(change model.Change) []string {
	switch c := change.(type) {
	case model.ProductChanged:
		keys := make([]string, 0, 3+len(c.ProductIDs))
		keys = append(keys, KeyLatestProducts, KeyProductCategories, KeyAdminProducts)
		for _, id := range c.ProductIDs {
			keys = append(keys, ProductKey(id))
		}
		return keys
	case model.OrderChanged:
		return []string{KeyAdminOrders, UserOrdersKey(c.UserID), OrderKey(c.OrderID)}
	case model.BothChanged:
		return append(KeysFor(c.Product), KeysFor(c.Order)...)
	default:
		panic(fmt.Sprintf("service: unknown change %T", change))
	}
}

// InvalidationService evicts the cache entries a mutation made stale. Call
// Invalidate after the mutation is persisted.
type InvalidationService struct {
	cache   *CacheService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewInvalidationService creates a new invalidation service
func NewInvalidationService(cache *CacheService, m *metrics.Metrics, logger *zap.Logger) *InvalidationService {
	return &InvalidationService{
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// Invalidate evicts every key of change. When it returns, none of the keys is
// cached and no load started earlier can repopulate them.
func (s *InvalidationService) Invalidate(ctx context.Context, change model.Change) {
	keys := KeysFor(change)
	s.cache.Evict(ctx, keys...)

	s.record(change)

	s.logger.Debug("Invalidated cache",
		zap.String("change", fmt.Sprintf("%T", change)),
		zap.Strings("keys", keys))
}

func (s *InvalidationService) record(change model.Change) {
	switch c := change.(type) {
	case model.ProductChanged:
		s.metrics.RecordInvalidation("product", len(KeysFor(c)))
	case model.OrderChanged:
		s.metrics.RecordInvalidation("order", len(KeysFor(c)))
	case model.BothChanged:
		s.record(c.Product)
		s.record(c.Order)
	}
}
