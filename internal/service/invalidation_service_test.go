package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
)

func TestKeysFor(t *testing.T) {
	tests := []struct {
		name   string
		change model.Change
		want   []string
	}{
		{
			name:   "product without ids",
			change: model.ProductChanged{},
			want:   []string{"latestProducts", "productCategories", "adminProducts"},
		},
		{
			name:   "product with ids",
			change: model.ProductChanged{ProductIDs: []string{"p1", "p2"}},
			want:   []string{"latestProducts", "productCategories", "adminProducts", "product-p1", "product-p2"},
		},
		{
			name:   "order",
			change: model.OrderChanged{UserID: "u7", OrderID: "o9"},
			want:   []string{"admin-orders", "user-order-u7", "order-o9"},
		},
		{
			name:   "order with empty ids",
			change: model.OrderChanged{},
			want:   []string{"admin-orders", "user-order-", "order-"},
		},
		{
			name: "both domains",
			change: model.BothChanged{
				Product: model.ProductChanged{ProductIDs: []string{"p1"}},
				Order:   model.OrderChanged{UserID: "u1", OrderID: "o1"},
			},
			want: []string{
				"latestProducts", "productCategories", "adminProducts", "product-p1",
				"admin-orders", "user-order-u1", "order-o1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeysFor(tt.change))
		})
	}
}

func TestKeysFor_AdminFlagIsIgnored(t *testing.T) {
	assert.Equal(t,
		KeysFor(model.ProductChanged{ProductIDs: []string{"p1"}}),
		KeysFor(model.ProductChanged{ProductIDs: []string{"p1"}, Admin: true}))
	assert.Equal(t,
		KeysFor(model.OrderChanged{UserID: "u1", OrderID: "o1"}),
		KeysFor(model.OrderChanged{UserID: "u1", OrderID: "o1", Admin: true}))
}

func TestKeysFor_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { KeysFor(nil) })
}

func TestInvalidate_ProductChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, key := range []string{"latestProducts", "productCategories", "adminProducts", "product-p1", "admin-orders"} {
		env.cache.Set(ctx, key, []byte(`[]`))
	}

	env.invalidation.Invalidate(ctx, model.ProductChanged{ProductIDs: []string{"p1"}})

	for _, key := range []string{"latestProducts", "productCategories", "adminProducts", "product-p1"} {
		assert.False(t, env.cache.Has(ctx, key), key)
	}
	assert.True(t, env.cache.Has(ctx, "admin-orders"), "order keys survive a product change")
}

func TestInvalidate_OrderChangeLeavesOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, key := range []string{"admin-orders", "user-order-u1", "user-order-u2", "order-o1", "latestProducts"} {
		env.cache.Set(ctx, key, []byte(`[]`))
	}

	env.invalidation.Invalidate(ctx, model.OrderChanged{UserID: "u1", OrderID: "o1", Admin: true})

	assert.False(t, env.cache.Has(ctx, "admin-orders"))
	assert.False(t, env.cache.Has(ctx, "user-order-u1"))
	assert.False(t, env.cache.Has(ctx, "order-o1"))
	assert.True(t, env.cache.Has(ctx, "user-order-u2"))
	assert.True(t, env.cache.Has(ctx, "latestProducts"))
}

func TestInvalidate_AbsentKeysAreNoOp(t *testing.T) {
	env := newTestEnv(t)

	assert.NotPanics(t, func() {
		env.invalidation.Invalidate(context.Background(), model.BothChanged{})
	})
	assert.Equal(t, 0, env.cache.Len(context.Background()))
}
