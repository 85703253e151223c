package service

import (
	"context"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SatishMhobiya/e-commerce-backend/internal/algorithm"
	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
)

const (
	latestTransactionLimit = 4
	// marketingShare of revenue is booked as marketing cost
	marketingShare = 0.3

	teenMaxAge  = 20
	adultMaxAge = 45
)

// StatsService computes the admin dashboard figures. Every view is computed
// from the store on each call and never cached.
type StatsService struct {
	store  store.DocumentStore
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(docs store.DocumentStore, clock clockwork.Clock, logger *zap.Logger) *StatsService {
	return &StatsService{
		store:  docs,
		clock:  clock,
		logger: logger,
	}
}

// monthStart returns midnight UTC on the first day of t's month shifted by
// the given number of months.
func monthStart(t time.Time, months int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
}

// chartWindow covers the length calendar months ending now. It starts on a
// month boundary so no document shares a month number with another bucket.
func chartWindow(now time.Time, length int) store.TimeRange {
	return store.TimeRange{Start: monthStart(now, -(length - 1)), End: now}
}

func orderTotal(o *model.Order) float64           { return o.Total }
func orderDiscount(o *model.Order) float64        { return o.Discount }
func orderTax(o *model.Order) float64             { return o.Tax }
func orderShipping(o *model.Order) float64        { return o.ShippingCharges }
func orderCreatedAt(o *model.Order) time.Time     { return o.CreatedAt }
func productCreatedAt(p *model.Product) time.Time { return p.CreatedAt }
func userCreatedAt(u *model.User) time.Time       { return u.CreatedAt }

// Dashboard returns the overview: month-over-month change, all-time counts,
// the six-month order chart, the category mix, the gender split and the
// latest transactions.
func (s *StatsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	now := s.clock.Now().UTC()
	thisMonth := store.TimeRange{Start: monthStart(now, 0), End: now}
	lastMonth := store.TimeRange{Start: monthStart(now, -1), End: thisMonth.Start.Add(-time.Nanosecond)}

	var (
		thisMonthProducts, lastMonthProducts []*model.Product
		thisMonthOrders, lastMonthOrders     []*model.Order
		thisMonthUsers, lastMonthUsers       []*model.User
		allOrders, sixMonthOrders, latest    []*model.Order
		productsCount, usersCount, females   int64
		categories                           []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		thisMonthProducts, err = s.store.ProductsCreatedBetween(gctx, thisMonth)
		return err
	})
	g.Go(func() (err error) {
		lastMonthProducts, err = s.store.ProductsCreatedBetween(gctx, lastMonth)
		return err
	})
	g.Go(func() (err error) {
		thisMonthOrders, err = s.store.OrdersCreatedBetween(gctx, thisMonth)
		return err
	})
	g.Go(func() (err error) {
		lastMonthOrders, err = s.store.OrdersCreatedBetween(gctx, lastMonth)
		return err
	})
	g.Go(func() (err error) {
		thisMonthUsers, err = s.store.UsersCreatedBetween(gctx, thisMonth)
		return err
	})
	g.Go(func() (err error) {
		lastMonthUsers, err = s.store.UsersCreatedBetween(gctx, lastMonth)
		return err
	})
	g.Go(func() (err error) {
		productsCount, err = s.store.CountProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		usersCount, err = s.store.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		allOrders, err = s.store.ListOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		sixMonthOrders, err = s.store.OrdersCreatedBetween(gctx, chartWindow(now, 6))
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.store.DistinctCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		females, err = s.store.CountUsersByGender(gctx, model.GenderFemale)
		return err
	})
	g.Go(func() (err error) {
		latest, err = s.store.LatestOrders(gctx, latestTransactionLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Upstream("failed to load dashboard stats", err)
	}

	categoryCount, err := s.categoryShares(ctx, categories, productsCount)
	if err != nil {
		return nil, err
	}

	thisMonthRevenue := algorithm.Sum(thisMonthOrders, orderTotal)
	lastMonthRevenue := algorithm.Sum(lastMonthOrders, orderTotal)

	stats := &model.DashboardStats{
		LatestTransactions: make([]model.LatestTransaction, 0, len(latest)),
		UserRatio: model.UserRatio{
			Male:   usersCount - females,
			Female: females,
		},
		Categories:    categories,
		CategoryCount: categoryCount,
	}
	// The dashboard lists the current month first, unlike the bar and line charts.
	stats.Chart.Order = newestFirst(algorithm.BucketByMonth(now, sixMonthOrders, 6, orderCreatedAt, nil))
	stats.Chart.Revenue = newestFirst(algorithm.BucketByMonth(now, sixMonthOrders, 6, orderCreatedAt, orderTotal))
	stats.Stats.Percentage = model.PercentageStats{
		Revenue:  algorithm.PercentageChange(thisMonthRevenue, lastMonthRevenue),
		Products: algorithm.PercentageChange(float64(len(thisMonthProducts)), float64(len(lastMonthProducts))),
		Orders:   algorithm.PercentageChange(float64(len(thisMonthOrders)), float64(len(lastMonthOrders))),
		Users:    algorithm.PercentageChange(float64(len(thisMonthUsers)), float64(len(lastMonthUsers))),
	}
	stats.Stats.Counts = model.CountStats{
		Products: productsCount,
		Orders:   int64(len(allOrders)),
		Users:    usersCount,
		Revenue:  algorithm.Sum(allOrders, orderTotal),
	}

	for _, o := range latest {
		stats.LatestTransactions = append(stats.LatestTransactions, model.LatestTransaction{
			ID:       o.ID,
			Discount: o.Discount,
			Quantity: len(o.OrderItems),
			Amount:   o.Total,
			Status:   o.Status,
		})
	}

	s.logger.Debug("Computed dashboard stats",
		zap.Int64("products", productsCount),
		zap.Int("orders", len(allOrders)),
		zap.Int64("users", usersCount))

	return stats, nil
}

func newestFirst(series []float64) []float64 {
	slices.Reverse(series)
	return series
}

// categoryShares counts each category and turns the counts into whole
// percentages of total, one single-entry map per category in input order.
func (s *StatsService) categoryShares(ctx context.Context, categories []string, total int64) ([]map[string]int, error) {
	counts := make([]int64, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		i, category := i, category
		g.Go(func() (err error) {
			counts[i], err = s.store.CountProductsByCategory(gctx, category)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Upstream("failed to count categories", err)
	}

	shares := algorithm.CategoryShare(categories, counts, total)
	out := make([]map[string]int, 0, len(categories))
	for _, category := range categories {
		out = append(out, map[string]int{category: shares[category]})
	}
	return out, nil
}

// PieCharts returns the ratio views: order fulfillment, inventory mix, stock
// availability, revenue breakdown, user ages and roles.
func (s *StatsService) PieCharts(ctx context.Context) (*model.PieCharts, error) {
	now := s.clock.Now().UTC()

	var (
		processing, shipped, delivered int64
		productsCount, outOfStock      int64
		admins, customers              int64
		categories                     []string
		allOrders                      []*model.Order
		allUsers                       []*model.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		processing, err = s.store.CountOrdersByStatus(gctx, model.OrderStatusProcessing)
		return err
	})
	g.Go(func() (err error) {
		shipped, err = s.store.CountOrdersByStatus(gctx, model.OrderStatusShipped)
		return err
	})
	g.Go(func() (err error) {
		delivered, err = s.store.CountOrdersByStatus(gctx, model.OrderStatusDelivered)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.store.DistinctCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		productsCount, err = s.store.CountProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		outOfStock, err = s.store.CountOutOfStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		allOrders, err = s.store.ListOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		allUsers, err = s.store.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		admins, err = s.store.CountUsersByRole(gctx, model.RoleAdmin)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.store.CountUsersByRole(gctx, model.RoleUser)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Upstream("failed to load pie charts", err)
	}

	inventory, err := s.categoryShares(ctx, categories, productsCount)
	if err != nil {
		return nil, err
	}

	revenue := model.RevenueDistribution{
		TotalRevenue:   algorithm.Sum(allOrders, orderTotal),
		Discount:       algorithm.Sum(allOrders, orderDiscount),
		ProductionCost: algorithm.Sum(allOrders, orderShipping),
		Burnt:          algorithm.Sum(allOrders, orderTax),
	}
	revenue.MarketingCost = algorithm.RoundHalfUp(revenue.TotalRevenue * marketingShare)
	revenue.NetMargin = revenue.TotalRevenue - revenue.Discount - revenue.ProductionCost -
		revenue.Burnt - revenue.MarketingCost

	var ages model.AgeDistribution
	for _, u := range allUsers {
		switch age := u.Age(now); {
		case age <= teenMaxAge:
			ages.Teen++
		case age <= adultMaxAge:
			ages.Adult++
		default:
			ages.Elder++
		}
	}

	return &model.PieCharts{
		FulfillmentRatio: model.FulfillmentRatio{
			Processing: processing,
			Shipped:    shipped,
			Delivered:  delivered,
		},
		InventoryRatio: inventory,
		StockAvailability: model.StockAvailability{
			OutOfStock: outOfStock,
			InStock:    productsCount - outOfStock,
		},
		RevenueDistribution: revenue,
		AgeDistribution:     ages,
		Users: model.RoleSplit{
			Admin:    admins,
			Customer: customers,
		},
	}, nil
}

// BarCharts returns monthly counts: products and users over six months,
// orders over twelve.
func (s *StatsService) BarCharts(ctx context.Context) (*model.BarCharts, error) {
	now := s.clock.Now().UTC()

	var (
		products []*model.Product
		users    []*model.User
		orders   []*model.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.store.ProductsCreatedBetween(gctx, chartWindow(now, 6))
		return err
	})
	g.Go(func() (err error) {
		users, err = s.store.UsersCreatedBetween(gctx, chartWindow(now, 6))
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.store.OrdersCreatedBetween(gctx, chartWindow(now, 12))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Upstream("failed to load bar charts", err)
	}

	return &model.BarCharts{
		Product: algorithm.BucketByMonth(now, products, 6, productCreatedAt, nil),
		Users:   algorithm.BucketByMonth(now, users, 6, userCreatedAt, nil),
		Orders:  algorithm.BucketByMonth(now, orders, 12, orderCreatedAt, nil),
	}, nil
}

// LineCharts returns twelve months of product and user counts alongside
// monthly discount and revenue sums.
func (s *StatsService) LineCharts(ctx context.Context) (*model.LineCharts, error) {
	now := s.clock.Now().UTC()
	window := chartWindow(now, 12)

	var (
		products []*model.Product
		users    []*model.User
		orders   []*model.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.store.ProductsCreatedBetween(gctx, window)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.store.UsersCreatedBetween(gctx, window)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.store.OrdersCreatedBetween(gctx, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Upstream("failed to load line charts", err)
	}

	return &model.LineCharts{
		Product:  algorithm.BucketByMonth(now, products, 12, productCreatedAt, nil),
		Users:    algorithm.BucketByMonth(now, users, 12, userCreatedAt, nil),
		Discount: algorithm.BucketByMonth(now, orders, 12, orderCreatedAt, orderDiscount),
		Revenue:  algorithm.BucketByMonth(now, orders, 12, orderCreatedAt, orderTotal),
	}, nil
}
