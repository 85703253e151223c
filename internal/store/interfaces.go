package store

import (
	"context"
	"errors"
	"time"

	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
)

// ErrNotFound is returned when a document is not found
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique field is already taken
var ErrDuplicate = errors.New("duplicate key")

// TimeRange bounds a created-at query, both ends inclusive.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// ProductStore persists catalog documents
type ProductStore interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListProducts(ctx context.Context) ([]*model.Product, error)
	LatestProducts(ctx context.Context, limit int) ([]*model.Product, error)
	SearchProducts(ctx context.Context, query model.ProductQuery) ([]*model.Product, int64, error)
	ProductsCreatedBetween(ctx context.Context, r TimeRange) ([]*model.Product, error)

	DistinctCategories(ctx context.Context) ([]string, error)
	CountProducts(ctx context.Context) (int64, error)
	CountProductsByCategory(ctx context.Context, category string) (int64, error)
	CountOutOfStock(ctx context.Context) (int64, error)

	// AdjustStock adds delta to the product's stock. A missing product is
	// reported as ErrNotFound.
	AdjustStock(ctx context.Context, id string, delta int) error
	// UpdateProductRatings writes the derived rating fields only.
	UpdateProductRatings(ctx context.Context, id string, summary model.RatingSummary) error
}

// OrderStore persists orders
type OrderStore interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
	DeleteOrder(ctx context.Context, id string) error

	ListOrders(ctx context.Context) ([]*model.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*model.Order, error)
	LatestOrders(ctx context.Context, limit int) ([]*model.Order, error)
	OrdersCreatedBetween(ctx context.Context, r TimeRange) ([]*model.Order, error)
	CountOrdersByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
}

// ReviewStore persists product reviews
type ReviewStore interface {
	CreateReview(ctx context.Context, review *model.Review) error
	GetReview(ctx context.Context, id string) (*model.Review, error)
	FindReview(ctx context.Context, userID, productID string) (*model.Review, error)
	UpdateReview(ctx context.Context, review *model.Review) error
	DeleteReview(ctx context.Context, id string) error
	ListReviewsByProduct(ctx context.Context, productID string) ([]*model.Review, error)
	// RatingSummary aggregates every review of the product in one read.
	RatingSummary(ctx context.Context, productID string) (model.RatingSummary, error)
}

// UserStore persists user accounts
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	UsersCreatedBetween(ctx context.Context, r TimeRange) ([]*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByGender(ctx context.Context, gender string) (int64, error)
	CountUsersByRole(ctx context.Context, role model.Role) (int64, error)
}

// CouponStore persists discount coupons
type CouponStore interface {
	CreateCoupon(ctx context.Context, coupon *model.Coupon) error
	GetCoupon(ctx context.Context, id string) (*model.Coupon, error)
	UpdateCoupon(ctx context.Context, coupon *model.Coupon) error
	DeleteCoupon(ctx context.Context, id string) (*model.Coupon, error)
	ListCoupons(ctx context.Context) ([]*model.Coupon, error)
}

// DocumentStore is the full persistence layer behind the storefront.
type DocumentStore interface {
	ProductStore
	OrderStore
	ReviewStore
	UserStore
	CouponStore

	// Health check
	Ping(ctx context.Context) error
	Close()
}

// Cache holds serialized read results keyed by string. Entries never expire
// on their own; they stay until deleted. Cache operations do not fail:
// backends that can fail log and degrade to a miss.
type Cache interface {
	Has(ctx context.Context, key string) bool
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// Delete removes every key. Absent keys are ignored.
	Delete(ctx context.Context, keys ...string)
	Len(ctx context.Context) int
	Ping(ctx context.Context) error
}
