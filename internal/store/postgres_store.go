package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

// BreakerSettings tunes the circuit breaker in front of the database
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// PostgresStore implements DocumentStore for PostgreSQL. Each collection is a
// table of JSONB documents keyed by id, with created_at lifted into a column
// for the time-window queries of the dashboard.
type PostgresStore struct {
	pool    *pgxpool.Pool
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		doc JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS products_category_idx ON products ((doc->>'category'))`,
	`CREATE INDEX IF NOT EXISTS products_created_idx ON products (created_at)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		doc JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_idx ON orders ((doc->>'user'))`,
	`CREATE INDEX IF NOT EXISTS orders_created_idx ON orders (created_at)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		doc JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS reviews_user_product_idx ON reviews ((doc->>'user'), (doc->>'product'))`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		doc JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS users_created_idx ON users (created_at)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id TEXT PRIMARY KEY,
		doc JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS coupons_code_idx ON coupons ((doc->>'code'))`,
}

// NewPostgresStore creates a new PostgreSQL document store
func NewPostgresStore(
	host string,
	port int,
	database, user, password string,
	maxConns, minConns int,
	breaker BreakerSettings,
	logger *zap.Logger,
) (*PostgresStore, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s pool_max_conns=%d pool_min_conns=%d",
		host, port, database, user, password, maxConns, minConns,
	)

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{
		pool:    pool,
		breaker: newBreaker("postgres", breaker, logger),
		logger:  logger,
	}, nil
}

func newBreaker(name string, settings BreakerSettings, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// Missing and duplicate documents do not count as failures.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate)
		},
	})
}

// EnsureSchema creates the collection tables and indexes when missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// guarded runs fn behind the circuit breaker
func guarded[T any](s *PostgresStore, fn func() (T, error)) (T, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (s *PostgresStore) exec(ctx context.Context, query string, args ...any) (int64, error) {
	return guarded(s, func() (int64, error) {
		tag, err := s.pool.Exec(ctx, query, args...)
		if err != nil {
			return 0, translate(err)
		}
		return tag.RowsAffected(), nil
	})
}

// execOne runs a statement that must touch exactly one row
func (s *PostgresStore) execOne(ctx context.Context, query string, args ...any) error {
	n, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) count(ctx context.Context, query string, args ...any) (int64, error) {
	return guarded(s, func() (int64, error) {
		var n int64
		if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
			return 0, translate(err)
		}
		return n, nil
	})
}

func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func insertDoc(ctx context.Context, s *PostgresStore, table, id string, createdAt time.Time, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", table, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, doc, created_at, updated_at) VALUES ($1, $2, $3, NOW())`, table)
	_, err = s.exec(ctx, query, id, data, createdAt)
	return err
}

func replaceDoc(ctx context.Context, s *PostgresStore, table, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", table, err)
	}
	query := fmt.Sprintf(`UPDATE %s SET doc = $2, updated_at = NOW() WHERE id = $1`, table)
	return s.execOne(ctx, query, id, data)
}

func getDoc[T any](ctx context.Context, s *PostgresStore, query string, args ...any) (*T, error) {
	return guarded(s, func() (*T, error) {
		var data []byte
		if err := s.pool.QueryRow(ctx, query, args...).Scan(&data); err != nil {
			return nil, translate(err)
		}
		var doc T
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		return &doc, nil
	})
}

func queryDocs[T any](ctx context.Context, s *PostgresStore, query string, args ...any) ([]*T, error) {
	return guarded(s, func() ([]*T, error) {
		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		docs := make([]*T, 0)
		for rows.Next() {
			var data []byte
			if err := rows.Scan(&data); err != nil {
				return nil, err
			}
			var doc T
			if err := json.Unmarshal(data, &doc); err != nil {
				return nil, fmt.Errorf("failed to unmarshal document: %w", err)
			}
			docs = append(docs, &doc)
		}
		return docs, rows.Err()
	})
}

// --- products ---

// CreateProduct stores a new product
func (s *PostgresStore) CreateProduct(ctx context.Context, product *model.Product) error {
	return insertDoc(ctx, s, "products", product.ID, product.CreatedAt, product)
}

// GetProduct retrieves a product by id
func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return getDoc[model.Product](ctx, s, `SELECT doc FROM products WHERE id = $1`, id)
}

// UpdateProduct replaces a stored product, keeping its rating fields
func (s *PostgresStore) UpdateProduct(ctx context.Context, product *model.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal products document: %w", err)
	}
	query := `
		UPDATE products
		SET doc = $2::jsonb || jsonb_build_object('ratings', doc->'ratings', 'numOfRatings', doc->'numOfRatings'),
		    updated_at = NOW()
		WHERE id = $1
	`
	return s.execOne(ctx, query, product.ID, data)
}

// DeleteProduct removes a product
func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM products WHERE id = $1`, id)
}

// ListProducts returns every product, oldest first
func (s *PostgresStore) ListProducts(ctx context.Context) ([]*model.Product, error) {
	return queryDocs[model.Product](ctx, s, `SELECT doc FROM products ORDER BY created_at, id`)
}

// LatestProducts returns up to limit products, newest first
func (s *PostgresStore) LatestProducts(ctx context.Context, limit int) ([]*model.Product, error) {
	return queryDocs[model.Product](ctx, s,
		`SELECT doc FROM products ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

// SearchProducts filters the catalog and returns one page plus the total
// number of matches.
func (s *PostgresStore) SearchProducts(ctx context.Context, query model.ProductQuery) ([]*model.Product, int64, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if query.Search != "" {
		add(`doc->>'name' ILIKE ('%%' || $%d || '%%')`, query.Search)
	}
	if query.MinPrice > 0 {
		add(`(doc->>'price')::float8 >= $%d`, query.MinPrice)
	}
	if query.MaxPrice > 0 {
		add(`(doc->>'price')::float8 <= $%d`, query.MaxPrice)
	}
	if query.Category != "" {
		add(`doc->>'category' = $%d`, query.Category)
	}

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	total, err := s.count(ctx, `SELECT COUNT(*) FROM products`+filter, args...)
	if err != nil {
		return nil, 0, err
	}

	order := " ORDER BY created_at, id"
	switch query.Sort {
	case model.SortPriceAsc:
		order = " ORDER BY (doc->>'price')::float8 ASC, created_at, id"
	case model.SortPriceDesc:
		order = " ORDER BY (doc->>'price')::float8 DESC, created_at, id"
	}

	page := ""
	if query.Limit > 0 {
		args = append(args, query.Limit)
		page += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if query.Skip > 0 {
		args = append(args, query.Skip)
		page += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	products, err := queryDocs[model.Product](ctx, s, `SELECT doc FROM products`+filter+order+page, args...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ProductsCreatedBetween returns products created within r
func (s *PostgresStore) ProductsCreatedBetween(ctx context.Context, r TimeRange) ([]*model.Product, error) {
	return queryDocs[model.Product](ctx, s,
		`SELECT doc FROM products WHERE created_at BETWEEN $1 AND $2 ORDER BY created_at, id`, r.Start, r.End)
}

// DistinctCategories returns every category in use, sorted
func (s *PostgresStore) DistinctCategories(ctx context.Context) ([]string, error) {
	return guarded(s, func() ([]string, error) {
		rows, err := s.pool.Query(ctx, `SELECT DISTINCT doc->>'category' AS category FROM products ORDER BY category`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		categories := make([]string, 0)
		for rows.Next() {
			var c string
			if err := rows.Scan(&c); err != nil {
				return nil, err
			}
			categories = append(categories, c)
		}
		return categories, rows.Err()
	})
}

// CountProducts returns the catalog size
func (s *PostgresStore) CountProducts(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM products`)
}

// CountProductsByCategory counts products in one category
func (s *PostgresStore) CountProductsByCategory(ctx context.Context, category string) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM products WHERE doc->>'category' = $1`, category)
}

// CountOutOfStock counts products with no stock left
func (s *PostgresStore) CountOutOfStock(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM products WHERE (doc->>'stock')::int <= 0`)
}

// AdjustStock adds delta to a product's stock in one statement
func (s *PostgresStore) AdjustStock(ctx context.Context, id string, delta int) error {
	query := `
		UPDATE products
		SET doc = jsonb_set(doc, '{stock}', to_jsonb((doc->>'stock')::int + $2)),
		    updated_at = NOW()
		WHERE id = $1
	`
	return s.execOne(ctx, query, id, delta)
}

// UpdateProductRatings writes the derived rating fields
func (s *PostgresStore) UpdateProductRatings(ctx context.Context, id string, summary model.RatingSummary) error {
	query := `
		UPDATE products
		SET doc = doc || jsonb_build_object('ratings', $2::float8, 'numOfRatings', $3::int),
		    updated_at = NOW()
		WHERE id = $1
	`
	return s.execOne(ctx, query, id, summary.AverageRating, summary.NumOfReviews)
}

// --- orders ---

// CreateOrder stores a new order
func (s *PostgresStore) CreateOrder(ctx context.Context, order *model.Order) error {
	return insertDoc(ctx, s, "orders", order.ID, order.CreatedAt, order)
}

// GetOrder retrieves an order by id
func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return getDoc[model.Order](ctx, s, `SELECT doc FROM orders WHERE id = $1`, id)
}

// UpdateOrderStatus sets the status of an order
func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	query := `
		UPDATE orders
		SET doc = doc || jsonb_build_object('status', $2::text, 'updatedAt', NOW()),
		    updated_at = NOW()
		WHERE id = $1
	`
	return s.execOne(ctx, query, id, string(status))
}

// DeleteOrder removes an order
func (s *PostgresStore) DeleteOrder(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM orders WHERE id = $1`, id)
}

// ListOrders returns every order, oldest first
func (s *PostgresStore) ListOrders(ctx context.Context) ([]*model.Order, error) {
	return queryDocs[model.Order](ctx, s, `SELECT doc FROM orders ORDER BY created_at, id`)
}

// ListOrdersByUser returns the orders placed by one user
func (s *PostgresStore) ListOrdersByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	return queryDocs[model.Order](ctx, s,
		`SELECT doc FROM orders WHERE doc->>'user' = $1 ORDER BY created_at, id`, userID)
}

// LatestOrders returns up to limit orders, newest first
func (s *PostgresStore) LatestOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	return queryDocs[model.Order](ctx, s,
		`SELECT doc FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

// OrdersCreatedBetween returns orders created within r
func (s *PostgresStore) OrdersCreatedBetween(ctx context.Context, r TimeRange) ([]*model.Order, error) {
	return queryDocs[model.Order](ctx, s,
		`SELECT doc FROM orders WHERE created_at BETWEEN $1 AND $2 ORDER BY created_at, id`, r.Start, r.End)
}

// CountOrdersByStatus counts orders in one status
func (s *PostgresStore) CountOrdersByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM orders WHERE doc->>'status' = $1`, string(status))
}

// --- reviews ---

// CreateReview stores a new review. The unique (user, product) index turns a
// second review into ErrDuplicate.
func (s *PostgresStore) CreateReview(ctx context.Context, review *model.Review) error {
	return insertDoc(ctx, s, "reviews", review.ID, review.CreatedAt, review)
}

// GetReview retrieves a review by id
func (s *PostgresStore) GetReview(ctx context.Context, id string) (*model.Review, error) {
	return getDoc[model.Review](ctx, s, `SELECT doc FROM reviews WHERE id = $1`, id)
}

// FindReview retrieves the review a user wrote for a product
func (s *PostgresStore) FindReview(ctx context.Context, userID, productID string) (*model.Review, error) {
	return getDoc[model.Review](ctx, s,
		`SELECT doc FROM reviews WHERE doc->>'user' = $1 AND doc->>'product' = $2`, userID, productID)
}

// UpdateReview replaces a stored review
func (s *PostgresStore) UpdateReview(ctx context.Context, review *model.Review) error {
	return replaceDoc(ctx, s, "reviews", review.ID, review)
}

// DeleteReview removes a review
func (s *PostgresStore) DeleteReview(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM reviews WHERE id = $1`, id)
}

// ListReviewsByProduct returns a product's reviews, oldest first
func (s *PostgresStore) ListReviewsByProduct(ctx context.Context, productID string) ([]*model.Review, error) {
	return queryDocs[model.Review](ctx, s,
		`SELECT doc FROM reviews WHERE doc->>'product' = $1 ORDER BY created_at, id`, productID)
}

// RatingSummary aggregates a product's reviews in a single statement
func (s *PostgresStore) RatingSummary(ctx context.Context, productID string) (model.RatingSummary, error) {
	return guarded(s, func() (model.RatingSummary, error) {
		var summary model.RatingSummary
		err := s.pool.QueryRow(ctx,
			`SELECT COALESCE(AVG((doc->>'rating')::float8), 0), COUNT(*) FROM reviews WHERE doc->>'product' = $1`,
			productID,
		).Scan(&summary.AverageRating, &summary.NumOfReviews)
		if err != nil {
			return model.RatingSummary{}, translate(err)
		}
		return summary, nil
	})
}

// --- users ---

// CreateUser stores a new user
func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	return insertDoc(ctx, s, "users", user.ID, user.CreatedAt, user)
}

// GetUser retrieves a user by id
func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return getDoc[model.User](ctx, s, `SELECT doc FROM users WHERE id = $1`, id)
}

// DeleteUser removes a user
func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

// ListUsers returns every user, oldest first
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	return queryDocs[model.User](ctx, s, `SELECT doc FROM users ORDER BY created_at, id`)
}

// UsersCreatedBetween returns users created within r
func (s *PostgresStore) UsersCreatedBetween(ctx context.Context, r TimeRange) ([]*model.User, error) {
	return queryDocs[model.User](ctx, s,
		`SELECT doc FROM users WHERE created_at BETWEEN $1 AND $2 ORDER BY created_at, id`, r.Start, r.End)
}

// CountUsers returns the number of users
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users`)
}

// CountUsersByGender counts users of one gender
func (s *PostgresStore) CountUsersByGender(ctx context.Context, gender string) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users WHERE doc->>'gender' = $1`, gender)
}

// CountUsersByRole counts users holding one role
func (s *PostgresStore) CountUsersByRole(ctx context.Context, role model.Role) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users WHERE doc->>'role' = $1`, string(role))
}

// --- coupons ---

// CreateCoupon stores a new coupon. Codes are unique.
func (s *PostgresStore) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	return insertDoc(ctx, s, "coupons", coupon.ID, coupon.CreatedAt, coupon)
}

// GetCoupon retrieves a coupon by id
func (s *PostgresStore) GetCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	return getDoc[model.Coupon](ctx, s, `SELECT doc FROM coupons WHERE id = $1`, id)
}

// UpdateCoupon replaces a stored coupon
func (s *PostgresStore) UpdateCoupon(ctx context.Context, coupon *model.Coupon) error {
	return replaceDoc(ctx, s, "coupons", coupon.ID, coupon)
}

// DeleteCoupon removes a coupon and returns what was deleted
func (s *PostgresStore) DeleteCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	return getDoc[model.Coupon](ctx, s, `DELETE FROM coupons WHERE id = $1 RETURNING doc`, id)
}

// ListCoupons returns every coupon, oldest first
func (s *PostgresStore) ListCoupons(ctx context.Context) ([]*model.Coupon, error) {
	return queryDocs[model.Coupon](ctx, s, `SELECT doc FROM coupons ORDER BY created_at, id`)
}

// Ping checks the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}
