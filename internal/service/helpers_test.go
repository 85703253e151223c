package service

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SatishMhobiya/e-commerce-backend/internal/metrics"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
	"github.com/SatishMhobiya/e-commerce-backend/internal/util/workerpool"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store        *store.MemoryStore
	cache        *store.InMemoryCache
	cacheSvc     *CacheService
	invalidation *InvalidationService
	metrics      *metrics.Metrics
	clock        clockwork.FakeClock
	pool         *workerpool.WorkerPool
	logger       *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	cache := store.NewInMemoryCache(0, logger)
	cacheSvc := NewCacheService(cache, m, logger)
	pool := workerpool.NewWorkerPool(&workerpool.Config{
		Name:       "test",
		MaxWorkers: 2,
		QueueSize:  16,
		Logger:     logger,
	})
	t.Cleanup(func() { _ = pool.Stop(5 * time.Second) })

	return &testEnv{
		store:        store.NewMemoryStore(),
		cache:        cache,
		cacheSvc:     cacheSvc,
		invalidation: NewInvalidationService(cacheSvc, m, logger),
		metrics:      m,
		clock:        clockwork.NewFakeClockAt(testNow),
		pool:         pool,
		logger:       logger,
	}
}

func (e *testEnv) products() *ProductService {
	return NewProductService(e.store, e.cacheSvc, e.invalidation, e.clock, 2, 5, e.logger)
}

func (e *testEnv) orders() *OrderService {
	return NewOrderService(e.store, e.store, e.cacheSvc, e.invalidation, e.pool, e.clock, e.metrics, e.logger)
}

func (e *testEnv) users() *UserService {
	return NewUserService(e.store, e.clock, e.logger)
}

func (e *testEnv) reviews() *ReviewService {
	return NewReviewService(e.store, e.store, e.store, e.users(), e.invalidation, e.clock, e.metrics, e.logger)
}

func (e *testEnv) seedProduct(t *testing.T, id, category string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		ID:          id,
		Name:        "Product " + id,
		Photos:      []model.Photo{{PublicID: id, URL: "https://img.example/" + id}},
		Price:       100,
		Category:    category,
		Stock:       stock,
		Description: "test product",
		CreatedAt:   e.clock.Now(),
		UpdatedAt:   e.clock.Now(),
	}
	require.NoError(t, e.store.CreateProduct(context.Background(), p))
	return p
}

func (e *testEnv) seedUser(t *testing.T, id string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		ID:        id,
		Name:      "User " + id,
		Email:     id + "@example.com",
		Gender:    model.GenderFemale,
		Role:      role,
		DOB:       time.Date(1995, time.May, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: e.clock.Now(),
		UpdatedAt: e.clock.Now(),
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}
