package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
)

const maxProductPhotos = 5

// NewProductInput carries the fields of a product being created
type NewProductInput struct {
	Name        string
	Price       float64
	Category    string
	Stock       int
	Description string
	Photos      []model.Photo
}

// ProductUpdate is a partial update. Nil fields and an empty photo list are
// left unchanged.
type ProductUpdate struct {
	Name        *string
	Price       *float64
	Category    *string
	Stock       *int
	Description *string
	Photos      []model.Photo
}

func (u ProductUpdate) empty() bool {
	return u.Name == nil && u.Price == nil && u.Category == nil &&
		u.Stock == nil && u.Description == nil && len(u.Photos) == 0
}

// SearchParams filters the public catalog search. Page starts at 1.
type SearchParams struct {
	Search   string
	MinPrice float64
	MaxPrice float64
	Category string
	Sort     model.ProductSort
	Page     int
}

// SearchResult is one page of products and the number of pages available
type SearchResult struct {
	Products  []*model.Product
	TotalPage int
}

// ProductService manages the catalog and its cached read views
type ProductService struct {
	products     store.ProductStore
	cache        *CacheService
	invalidation *InvalidationService
	clock        clockwork.Clock
	perPage      int
	latestLimit  int
	logger       *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	products store.ProductStore,
	cache *CacheService,
	invalidation *InvalidationService,
	clock clockwork.Clock,
	perPage, latestLimit int,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		products:     products,
		cache:        cache,
		invalidation: invalidation,
		clock:        clock,
		perPage:      perPage,
		latestLimit:  latestLimit,
		logger:       logger,
	}
}

// CreateProduct validates and stores a new product
func (s *ProductService) CreateProduct(ctx context.Context, in NewProductInput) (*model.Product, error) {
	if len(in.Photos) == 0 {
		return nil, apperrors.Validation("Please add product photo")
	}
	if len(in.Photos) > maxProductPhotos {
		return nil, apperrors.Validation("You can only upload 5 photos")
	}
	if strings.TrimSpace(in.Name) == "" || in.Price <= 0 || strings.TrimSpace(in.Category) == "" ||
		in.Stock <= 0 || strings.TrimSpace(in.Description) == "" {
		return nil, apperrors.Validation("Please add all fields for product")
	}

	now := s.clock.Now()
	product := &model.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Photos:      in.Photos,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, apperrors.Upstream("failed to create product", err)
	}

	s.invalidation.Invalidate(ctx, model.ProductChanged{ProductIDs: []string{product.ID}, Admin: true})

	s.logger.Info("Created product",
		zap.String("product_id", product.ID),
		zap.String("category", product.Category))

	return product, nil
}

// UpdateProduct applies a partial update to an existing product
func (s *ProductService) UpdateProduct(ctx context.Context, id string, update ProductUpdate) (*model.Product, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, fromStore(err, "get product", "Product not found")
	}
	if update.empty() {
		return nil, apperrors.Validation("Please add atleast one thing to update")
	}
	if len(update.Photos) > maxProductPhotos {
		return nil, apperrors.Validation("You can only upload 5 photos")
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.Stock != nil {
		product.Stock = *update.Stock
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if len(update.Photos) > 0 {
		product.Photos = update.Photos
	}
	product.UpdatedAt = s.clock.Now()

	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return nil, fromStore(err, "update product", "Product not found")
	}

	s.invalidation.Invalidate(ctx, model.ProductChanged{ProductIDs: []string{id}, Admin: true})

	s.logger.Info("Updated product", zap.String("product_id", id))

	return product, nil
}

// DeleteProduct removes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return fromStore(err, "delete product", "Product not found")
	}

	s.invalidation.Invalidate(ctx, model.ProductChanged{ProductIDs: []string{id}, Admin: true})

	s.logger.Info("Deleted product", zap.String("product_id", id))
	return nil
}

// GetProduct returns one product, served from product-<id> when cached
func (s *ProductService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return Cached(ctx, s.cache, ProductKey(id), func(ctx context.Context) (*model.Product, error) {
		product, err := s.products.GetProduct(ctx, id)
		if err != nil {
			return nil, fromStore(err, "get product", "Product not found")
		}
		return product, nil
	})
}

// LatestProducts returns the newest products
func (s *ProductService) LatestProducts(ctx context.Context) ([]*model.Product, error) {
	return Cached(ctx, s.cache, KeyLatestProducts, func(ctx context.Context) ([]*model.Product, error) {
		products, err := s.products.LatestProducts(ctx, s.latestLimit)
		if err != nil {
			return nil, apperrors.Upstream("failed to list latest products", err)
		}
		return products, nil
	})
}

// Categories returns every distinct product category
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return Cached(ctx, s.cache, KeyProductCategories, func(ctx context.Context) ([]string, error) {
		categories, err := s.products.DistinctCategories(ctx)
		if err != nil {
			return nil, apperrors.Upstream("failed to list categories", err)
		}
		return categories, nil
	})
}

// AdminProducts returns the full catalog for the admin views
func (s *ProductService) AdminProducts(ctx context.Context) ([]*model.Product, error) {
	return Cached(ctx, s.cache, KeyAdminProducts, func(ctx context.Context) ([]*model.Product, error) {
		products, err := s.products.ListProducts(ctx)
		if err != nil {
			return nil, apperrors.Upstream("failed to list products", err)
		}
		return products, nil
	})
}

// SearchProducts runs the filtered catalog search. Results are not cached.
func (s *ProductService) SearchProducts(ctx context.Context, params SearchParams) (*SearchResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := s.perPage

	products, total, err := s.products.SearchProducts(ctx, model.ProductQuery{
		Search:   params.Search,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Category: params.Category,
		Sort:     params.Sort,
		Limit:    limit,
		Skip:     (page - 1) * limit,
	})
	if err != nil {
		return nil, apperrors.Upstream("failed to search products", err)
	}

	return &SearchResult{
		Products:  products,
		TotalPage: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}
