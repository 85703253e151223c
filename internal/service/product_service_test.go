package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
)

func validProductInput() NewProductInput {
	return NewProductInput{
		Name:        "MacBook Air",
		Price:       1200,
		Category:    "laptop",
		Stock:       4,
		Description: "13 inch",
		Photos:      []model.Photo{{PublicID: "mba", URL: "https://img.example/mba"}},
	}
}

func TestProductService_CreateProductValidation(t *testing.T) {
	svc := newTestEnv(t).products()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*NewProductInput)
		message string
	}{
		{"no photos", func(in *NewProductInput) { in.Photos = nil }, "Please add product photo"},
		{"too many photos", func(in *NewProductInput) { in.Photos = make([]model.Photo, 6) }, "You can only upload 5 photos"},
		{"missing name", func(in *NewProductInput) { in.Name = " " }, "Please add all fields for product"},
		{"zero price", func(in *NewProductInput) { in.Price = 0 }, "Please add all fields for product"},
		{"missing description", func(in *NewProductInput) { in.Description = "" }, "Please add all fields for product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validProductInput()
			tt.mutate(&in)

			_, err := svc.CreateProduct(ctx, in)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindValidation))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestProductService_CreateInvalidatesCatalogViews(t *testing.T) {
	env := newTestEnv(t)
	svc := env.products()
	ctx := context.Background()

	latest, err := svc.LatestProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, latest)
	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)

	created, err := svc.CreateProduct(ctx, validProductInput())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, testNow, created.CreatedAt)

	latest, err = svc.LatestProducts(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, created.ID, latest[0].ID)

	categories, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"laptop"}, categories)
}

func TestProductService_DetailsCachedUntilUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.products()
	ctx := context.Background()
	env.seedProduct(t, "p1", "laptop", 3)

	p, err := svc.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Product p1", p.Name)
	assert.True(t, env.cache.Has(ctx, "product-p1"))

	name := "Renamed"
	stock := 0
	updated, err := svc.UpdateProduct(ctx, "p1", ProductUpdate{Name: &name, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, env.cache.Has(ctx, "product-p1"))

	p, err = svc.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, 0, p.Stock)
}

func TestProductService_UpdateErrors(t *testing.T) {
	env := newTestEnv(t)
	svc := env.products()
	ctx := context.Background()
	env.seedProduct(t, "p1", "laptop", 3)

	_, err := svc.UpdateProduct(ctx, "p1", ProductUpdate{})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Equal(t, "Please add atleast one thing to update", err.Error())

	price := 10.0
	_, err = svc.UpdateProduct(ctx, "missing", ProductUpdate{Price: &price})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, "Product not found", err.Error())
}

func TestProductService_DeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	svc := env.products()
	ctx := context.Background()
	env.seedProduct(t, "p1", "laptop", 3)

	all, err := svc.AdminProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteProduct(ctx, "p1"))

	all, err = svc.AdminProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = svc.GetProduct(ctx, "p1")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = svc.DeleteProduct(ctx, "p1")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestProductService_SearchPaging(t *testing.T) {
	env := newTestEnv(t)
	svc := env.products()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		env.seedProduct(t, id, "laptop", 1)
		env.clock.Advance(time.Minute)
	}
	env.seedProduct(t, "f", "phone", 1)

	res, err := svc.SearchProducts(ctx, SearchParams{Category: "laptop"})
	require.NoError(t, err)
	assert.Len(t, res.Products, 2)
	assert.Equal(t, 3, res.TotalPage)

	res, err = svc.SearchProducts(ctx, SearchParams{Category: "laptop", Page: 3})
	require.NoError(t, err)
	assert.Len(t, res.Products, 1)

	res, err = svc.SearchProducts(ctx, SearchParams{Search: "PRODUCT F"})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "f", res.Products[0].ID)
	assert.Equal(t, 1, res.TotalPage)
}
