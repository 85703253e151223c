package store

import (
	"context"
	"testing"
	"time"

	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

func seedProducts(t *testing.T, s *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	products := []*model.Product{
		{ID: "p1", Name: "MacBook Air", Price: 1200, Category: "laptop", Stock: 3, CreatedAt: base},
		{ID: "p2", Name: "Canon EOS", Price: 800, Category: "camera", Stock: 0, CreatedAt: base.Add(time.Hour)},
		{ID: "p3", Name: "ThinkPad", Price: 900, Category: "laptop", Stock: 7, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "p4", Name: "iPhone", Price: 1000, Category: "phone", Stock: 1, CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, p := range products {
		require.NoError(t, s.CreateProduct(ctx, p))
	}
}

func TestMemoryStore_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedProducts(t, s)

	assert.ErrorIs(t, s.CreateProduct(ctx, &model.Product{ID: "p1"}), ErrDuplicate)

	p, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "MacBook Air", p.Name)

	// returned copies are detached from the store
	p.Name = "changed"
	again, _ := s.GetProduct(ctx, "p1")
	assert.Equal(t, "MacBook Air", again.Name)

	_, err = s.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.UpdateProductRatings(ctx, "p1", model.RatingSummary{AverageRating: 4.5, NumOfReviews: 2}))
	p.Name = "MacBook Air M3"
	p.Ratings = 0
	require.NoError(t, s.UpdateProduct(ctx, p))
	updated, _ := s.GetProduct(ctx, "p1")
	assert.Equal(t, "MacBook Air M3", updated.Name)
	assert.Equal(t, 4.5, updated.Ratings)
	assert.Equal(t, 2, updated.NumOfRatings)

	require.NoError(t, s.AdjustStock(ctx, "p1", -2))
	updated, _ = s.GetProduct(ctx, "p1")
	assert.Equal(t, 1, updated.Stock)
	assert.ErrorIs(t, s.AdjustStock(ctx, "missing", -1), ErrNotFound)

	require.NoError(t, s.DeleteProduct(ctx, "p1"))
	assert.ErrorIs(t, s.DeleteProduct(ctx, "p1"), ErrNotFound)
}

func TestMemoryStore_ProductQueries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedProducts(t, s)

	latest, err := s.LatestProducts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "p4", latest[0].ID)
	assert.Equal(t, "p3", latest[1].ID)

	categories, err := s.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"camera", "laptop", "phone"}, categories)

	n, _ := s.CountProductsByCategory(ctx, "laptop")
	assert.Equal(t, int64(2), n)
	n, _ = s.CountOutOfStock(ctx)
	assert.Equal(t, int64(1), n)

	inRange, err := s.ProductsCreatedBetween(ctx, TimeRange{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, inRange, 2)
}

func TestMemoryStore_SearchProducts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedProducts(t, s)

	tests := []struct {
		name      string
		query     model.ProductQuery
		wantIDs   []string
		wantTotal int64
	}{
		{
			name:      "case-insensitive name",
			query:     model.ProductQuery{Search: "pad"},
			wantIDs:   []string{"p3"},
			wantTotal: 1,
		},
		{
			name:      "category sorted by price ascending",
			query:     model.ProductQuery{Category: "laptop", Sort: model.SortPriceAsc},
			wantIDs:   []string{"p3", "p1"},
			wantTotal: 2,
		},
		{
			name:      "price window descending",
			query:     model.ProductQuery{MinPrice: 850, MaxPrice: 1100, Sort: model.SortPriceDesc},
			wantIDs:   []string{"p4", "p3"},
			wantTotal: 2,
		},
		{
			name:      "second page",
			query:     model.ProductQuery{Limit: 2, Skip: 2},
			wantIDs:   []string{"p3", "p4"},
			wantTotal: 4,
		},
		{
			name:      "skip past the end",
			query:     model.ProductQuery{Limit: 2, Skip: 10},
			wantIDs:   []string{},
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := s.SearchProducts(ctx, tt.query)
			require.NoError(t, err)
			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestMemoryStore_Orders(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	orders := []*model.Order{
		{ID: "o1", User: "u1", Status: model.OrderStatusProcessing, CreatedAt: base},
		{ID: "o2", User: "u2", Status: model.OrderStatusShipped, CreatedAt: base.Add(time.Hour)},
		{ID: "o3", User: "u1", Status: model.OrderStatusProcessing, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, o := range orders {
		require.NoError(t, s.CreateOrder(ctx, o))
	}

	mine, err := s.ListOrdersByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, s.UpdateOrderStatus(ctx, "o1", model.OrderStatusShipped))
	n, _ := s.CountOrdersByStatus(ctx, model.OrderStatusShipped)
	assert.Equal(t, int64(2), n)
	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, "missing", model.OrderStatusShipped), ErrNotFound)

	latest, _ := s.LatestOrders(ctx, 1)
	require.Len(t, latest, 1)
	assert.Equal(t, "o3", latest[0].ID)

	require.NoError(t, s.DeleteOrder(ctx, "o2"))
	all, _ := s.ListOrders(ctx)
	assert.Len(t, all, 2)
}

func TestMemoryStore_Reviews(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateReview(ctx, &model.Review{ID: "r1", User: "u1", Product: "p1", Rating: 4, CreatedAt: base}))
	require.NoError(t, s.CreateReview(ctx, &model.Review{ID: "r2", User: "u2", Product: "p1", Rating: 2, CreatedAt: base}))
	assert.ErrorIs(t, s.CreateReview(ctx, &model.Review{ID: "r3", User: "u1", Product: "p1", Rating: 1}), ErrDuplicate)

	found, err := s.FindReview(ctx, "u2", "p1")
	require.NoError(t, err)
	assert.Equal(t, "r2", found.ID)

	summary, err := s.RatingSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{AverageRating: 3, NumOfReviews: 2}, summary)

	summary, _ = s.RatingSummary(ctx, "p2")
	assert.Equal(t, model.RatingSummary{}, summary)

	require.NoError(t, s.DeleteReview(ctx, "r1"))
	list, _ := s.ListReviewsByProduct(ctx, "p1")
	assert.Len(t, list, 1)
}

func TestMemoryStore_Coupons(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateCoupon(ctx, &model.Coupon{ID: "c1", Code: "SAVE10", Amount: 10}))
	assert.ErrorIs(t, s.CreateCoupon(ctx, &model.Coupon{ID: "c2", Code: "SAVE10", Amount: 5}), ErrDuplicate)

	require.NoError(t, s.CreateCoupon(ctx, &model.Coupon{ID: "c2", Code: "SAVE20", Amount: 20}))
	assert.ErrorIs(t, s.UpdateCoupon(ctx, &model.Coupon{ID: "c2", Code: "SAVE10"}), ErrDuplicate)

	deleted, err := s.DeleteCoupon(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", deleted.Code)

	_, err = s.DeleteCoupon(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateUser(ctx, &model.User{ID: "u1", Gender: model.GenderMale, Role: model.RoleAdmin, CreatedAt: base}))
	require.NoError(t, s.CreateUser(ctx, &model.User{ID: "u2", Gender: model.GenderFemale, Role: model.RoleUser, CreatedAt: base}))
	assert.ErrorIs(t, s.CreateUser(ctx, &model.User{ID: "u1"}), ErrDuplicate)

	n, _ := s.CountUsersByGender(ctx, model.GenderFemale)
	assert.Equal(t, int64(1), n)
	n, _ = s.CountUsersByRole(ctx, model.RoleAdmin)
	assert.Equal(t, int64(1), n)
	n, _ = s.CountUsers(ctx)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.DeleteUser(ctx, "u2"))
	_, err := s.GetUser(ctx, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}
