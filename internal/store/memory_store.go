package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
)

// MemoryStore implements DocumentStore in process memory. Every document is
// copied on the way in and on the way out so callers never share state with
// the store.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*model.Product
	orders   map[string]*model.Order
	reviews  map[string]*model.Review
	users    map[string]*model.User
	coupons  map[string]*model.Coupon
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory document store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*model.Product),
		orders:   make(map[string]*model.Order),
		reviews:  make(map[string]*model.Review),
		users:    make(map[string]*model.User),
		coupons:  make(map[string]*model.Coupon),
		now:      time.Now,
	}
}

func inRange(t time.Time, r TimeRange) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// sortByCreated orders documents oldest first, breaking ties by id.
func sortByCreated[T any](docs []T, createdAt func(T) time.Time, id func(T) string) {
	sort.SliceStable(docs, func(i, j int) bool {
		ti, tj := createdAt(docs[i]), createdAt(docs[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return id(docs[i]) < id(docs[j])
	})
}

func productCreated(p *model.Product) time.Time { return p.CreatedAt }
func productID(p *model.Product) string         { return p.ID }
func orderCreated(o *model.Order) time.Time     { return o.CreatedAt }
func orderID(o *model.Order) string             { return o.ID }
func userCreated(u *model.User) time.Time       { return u.CreatedAt }
func userID(u *model.User) string               { return u.ID }

func reverse[T any](docs []T) {
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
}

// --- products ---

// CreateProduct stores a new product
func (s *MemoryStore) CreateProduct(ctx context.Context, product *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; exists {
		return ErrDuplicate
	}
	s.products[product.ID] = product.Clone()
	return nil
}

// GetProduct retrieves a product by id
func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[id]
	if !exists {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// UpdateProduct replaces a stored product. Rating fields are kept as stored.
func (s *MemoryStore) UpdateProduct(ctx context.Context, product *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.products[product.ID]
	if !exists {
		return ErrNotFound
	}
	updated := product.Clone()
	updated.Ratings = existing.Ratings
	updated.NumOfRatings = existing.NumOfRatings
	s.products[product.ID] = updated
	return nil
}

// DeleteProduct removes a product
func (s *MemoryStore) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) productsLocked(keep func(*model.Product) bool) []*model.Product {
	out := make([]*model.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep == nil || keep(p) {
			out = append(out, p.Clone())
		}
	}
	sortByCreated(out, productCreated, productID)
	return out
}

// ListProducts returns every product, oldest first
func (s *MemoryStore) ListProducts(ctx context.Context) ([]*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productsLocked(nil), nil
}

// LatestProducts returns up to limit products, newest first
func (s *MemoryStore) LatestProducts(ctx context.Context, limit int) ([]*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.productsLocked(nil)
	reverse(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SearchProducts filters the catalog and returns one page plus the total
// number of matches.
func (s *MemoryStore) SearchProducts(ctx context.Context, query model.ProductQuery) ([]*model.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(query.Search)
	matches := s.productsLocked(func(p *model.Product) bool {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			return false
		}
		if query.MinPrice > 0 && p.Price < query.MinPrice {
			return false
		}
		if query.MaxPrice > 0 && p.Price > query.MaxPrice {
			return false
		}
		if query.Category != "" && p.Category != query.Category {
			return false
		}
		return true
	})

	switch query.Sort {
	case model.SortPriceAsc:
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Price < matches[j].Price })
	case model.SortPriceDesc:
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Price > matches[j].Price })
	}

	total := int64(len(matches))
	if query.Skip > 0 {
		if query.Skip >= len(matches) {
			matches = matches[:0]
		} else {
			matches = matches[query.Skip:]
		}
	}
	if query.Limit > 0 && len(matches) > query.Limit {
		matches = matches[:query.Limit]
	}
	return matches, total, nil
}

// ProductsCreatedBetween returns products created within r
func (s *MemoryStore) ProductsCreatedBetween(ctx context.Context, r TimeRange) ([]*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productsLocked(func(p *model.Product) bool { return inRange(p.CreatedAt, r) }), nil
}

// DistinctCategories returns every category in use, sorted
func (s *MemoryStore) DistinctCategories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// CountProducts returns the catalog size
func (s *MemoryStore) CountProducts(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

// CountProductsByCategory counts products in one category
func (s *MemoryStore) CountProductsByCategory(ctx context.Context, category string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.products {
		if p.Category == category {
			n++
		}
	}
	return n, nil
}

// CountOutOfStock counts products with no stock left
func (s *MemoryStore) CountOutOfStock(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.products {
		if p.Stock <= 0 {
			n++
		}
	}
	return n, nil
}

// AdjustStock adds delta to a product's stock
func (s *MemoryStore) AdjustStock(ctx context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		return ErrNotFound
	}
	p.Stock += delta
	p.UpdatedAt = s.now()
	return nil
}

// UpdateProductRatings writes the derived rating fields
func (s *MemoryStore) UpdateProductRatings(ctx context.Context, id string, summary model.RatingSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		return ErrNotFound
	}
	p.Ratings = summary.AverageRating
	p.NumOfRatings = summary.NumOfReviews
	p.UpdatedAt = s.now()
	return nil
}

// --- orders ---

// CreateOrder stores a new order
func (s *MemoryStore) CreateOrder(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return ErrDuplicate
	}
	s.orders[order.ID] = order.Clone()
	return nil
}

// GetOrder retrieves an order by id
func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.orders[id]
	if !exists {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

// UpdateOrderStatus sets the status of an order
func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, exists := s.orders[id]
	if !exists {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now()
	return nil
}

// DeleteOrder removes an order
func (s *MemoryStore) DeleteOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[id]; !exists {
		return ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *MemoryStore) ordersLocked(keep func(*model.Order) bool) []*model.Order {
	out := make([]*model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep == nil || keep(o) {
			out = append(out, o.Clone())
		}
	}
	sortByCreated(out, orderCreated, orderID)
	return out
}

// ListOrders returns every order, oldest first
func (s *MemoryStore) ListOrders(ctx context.Context) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ordersLocked(nil), nil
}

// ListOrdersByUser returns the orders placed by one user
func (s *MemoryStore) ListOrdersByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ordersLocked(func(o *model.Order) bool { return o.User == userID }), nil
}

// LatestOrders returns up to limit orders, newest first
func (s *MemoryStore) LatestOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.ordersLocked(nil)
	reverse(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// OrdersCreatedBetween returns orders created within r
func (s *MemoryStore) OrdersCreatedBetween(ctx context.Context, r TimeRange) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ordersLocked(func(o *model.Order) bool { return inRange(o.CreatedAt, r) }), nil
}

// CountOrdersByStatus counts orders in one status
func (s *MemoryStore) CountOrdersByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, o := range s.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

// --- reviews ---

// CreateReview stores a new review. A second review by the same user for the
// same product is rejected with ErrDuplicate.
func (s *MemoryStore) CreateReview(ctx context.Context, review *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reviews[review.ID]; exists {
		return ErrDuplicate
	}
	for _, r := range s.reviews {
		if r.User == review.User && r.Product == review.Product {
			return ErrDuplicate
		}
	}
	c := *review
	s.reviews[review.ID] = &c
	return nil
}

// GetReview retrieves a review by id
func (s *MemoryStore) GetReview(ctx context.Context, id string) (*model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.reviews[id]
	if !exists {
		return nil, ErrNotFound
	}
	c := *r
	return &c, nil
}

// FindReview retrieves the review a user wrote for a product
func (s *MemoryStore) FindReview(ctx context.Context, userID, productID string) (*model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reviews {
		if r.User == userID && r.Product == productID {
			c := *r
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateReview replaces a stored review
func (s *MemoryStore) UpdateReview(ctx context.Context, review *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reviews[review.ID]; !exists {
		return ErrNotFound
	}
	c := *review
	s.reviews[review.ID] = &c
	return nil
}

// DeleteReview removes a review
func (s *MemoryStore) DeleteReview(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reviews[id]; !exists {
		return ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

// ListReviewsByProduct returns a product's reviews, oldest first
func (s *MemoryStore) ListReviewsByProduct(ctx context.Context, productID string) ([]*model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Review, 0)
	for _, r := range s.reviews {
		if r.Product == productID {
			c := *r
			out = append(out, &c)
		}
	}
	sortByCreated(out,
		func(r *model.Review) time.Time { return r.CreatedAt },
		func(r *model.Review) string { return r.ID })
	return out, nil
}

// RatingSummary aggregates a product's reviews under one read lock
func (s *MemoryStore) RatingSummary(ctx context.Context, productID string) (model.RatingSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := make([]*model.Review, 0)
	for _, r := range s.reviews {
		if r.Product == productID {
			reviews = append(reviews, r)
		}
	}
	return model.Summarize(reviews), nil
}

// --- users ---

// CreateUser stores a new user
func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return ErrDuplicate
	}
	c := *user
	s.users[user.ID] = &c
	return nil
}

// GetUser retrieves a user by id
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// DeleteUser removes a user
func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) usersLocked(keep func(*model.User) bool) []*model.User {
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		if keep == nil || keep(u) {
			c := *u
			out = append(out, &c)
		}
	}
	sortByCreated(out, userCreated, userID)
	return out
}

// ListUsers returns every user, oldest first
func (s *MemoryStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersLocked(nil), nil
}

// UsersCreatedBetween returns users created within r
func (s *MemoryStore) UsersCreatedBetween(ctx context.Context, r TimeRange) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersLocked(func(u *model.User) bool { return inRange(u.CreatedAt, r) }), nil
}

// CountUsers returns the number of users
func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// CountUsersByGender counts users of one gender
func (s *MemoryStore) CountUsersByGender(ctx context.Context, gender string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, u := range s.users {
		if u.Gender == gender {
			n++
		}
	}
	return n, nil
}

// CountUsersByRole counts users holding one role
func (s *MemoryStore) CountUsersByRole(ctx context.Context, role model.Role) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// --- coupons ---

// CreateCoupon stores a new coupon. Codes are unique.
func (s *MemoryStore) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.coupons[coupon.ID]; exists {
		return ErrDuplicate
	}
	for _, c := range s.coupons {
		if c.Code == coupon.Code {
			return ErrDuplicate
		}
	}
	c := *coupon
	s.coupons[coupon.ID] = &c
	return nil
}

// GetCoupon retrieves a coupon by id
func (s *MemoryStore) GetCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.coupons[id]
	if !exists {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

// UpdateCoupon replaces a stored coupon
func (s *MemoryStore) UpdateCoupon(ctx context.Context, coupon *model.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.coupons[coupon.ID]; !exists {
		return ErrNotFound
	}
	for id, c := range s.coupons {
		if id != coupon.ID && c.Code == coupon.Code {
			return ErrDuplicate
		}
	}
	c := *coupon
	s.coupons[coupon.ID] = &c
	return nil
}

// DeleteCoupon removes a coupon and returns what was deleted
func (s *MemoryStore) DeleteCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.coupons[id]
	if !exists {
		return nil, ErrNotFound
	}
	delete(s.coupons, id)
	return c, nil
}

// ListCoupons returns every coupon, oldest first
func (s *MemoryStore) ListCoupons(ctx context.Context) ([]*model.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		cp := *c
		out = append(out, &cp)
	}
	sortByCreated(out,
		func(c *model.Coupon) time.Time { return c.CreatedAt },
		func(c *model.Coupon) string { return c.ID })
	return out, nil
}

// Ping always succeeds for the in-memory store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() {}
