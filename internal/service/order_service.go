package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/metrics"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
	"github.com/SatishMhobiya/e-commerce-backend/internal/util/workerpool"
	"github.com/SatishMhobiya/e-commerce-backend/internal/validation"
)

// TaskKindStockDecrement labels the background stock update run after an
// order is placed.
const TaskKindStockDecrement = "stock-decrement"

// TaskSubmitter queues background work
type TaskSubmitter interface {
	Submit(task workerpool.Task) error
}

// NewOrderInput is the body of a new order
type NewOrderInput struct {
	ShippingInfo    model.ShippingInfo `json:"shippingInfo" validate:"required"`
	User            string             `json:"user" validate:"required"`
	Subtotal        float64            `json:"subtotal" validate:"gt=0"`
	Tax             float64            `json:"tax" validate:"gte=0"`
	ShippingCharges float64            `json:"shippingCharges" validate:"gte=0"`
	Discount        float64            `json:"discount" validate:"gte=0"`
	Total           float64            `json:"total" validate:"gt=0"`
	OrderItems      []model.OrderItem  `json:"orderItems" validate:"required,min=1,dive"`
}

// OrderService places orders and drives them through their lifecycle
type OrderService struct {
	orders       store.OrderStore
	products     store.ProductStore
	cache        *CacheService
	invalidation *InvalidationService
	tasks        TaskSubmitter
	validator    *validation.Validator
	clock        clockwork.Clock
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders store.OrderStore,
	products store.ProductStore,
	cache *CacheService,
	invalidation *InvalidationService,
	tasks TaskSubmitter,
	clock clockwork.Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:       orders,
		products:     products,
		cache:        cache,
		invalidation: invalidation,
		tasks:        tasks,
		validator:    validation.Default(),
		clock:        clock,
		metrics:      m,
		logger:       logger,
	}
}

// PlaceOrder stores a new order in the Processing state and queues the stock
// decrement of its items.
func (s *OrderService) PlaceOrder(ctx context.Context, in NewOrderInput) (*model.Order, error) {
	if err := s.validator.Struct(in); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.Message = "All fields are required"
			return nil, appErr
		}
		return nil, apperrors.Validation("All fields are required")
	}

	now := s.clock.Now()
	order := &model.Order{
		ID:              uuid.NewString(),
		ShippingInfo:    in.ShippingInfo,
		User:            in.User,
		Subtotal:        in.Subtotal,
		Tax:             in.Tax,
		ShippingCharges: in.ShippingCharges,
		Discount:        in.Discount,
		Total:           in.Total,
		Status:          model.OrderStatusProcessing,
		OrderItems:      in.OrderItems,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, apperrors.Upstream("failed to create order", err)
	}

	s.queueStockDecrement(ctx, order)

	s.invalidation.Invalidate(ctx, model.BothChanged{
		Product: model.ProductChanged{ProductIDs: order.ProductIDs(), Admin: true},
		Order:   model.OrderChanged{UserID: order.User, OrderID: order.ID, Admin: true},
	})

	s.logger.Info("Placed order",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.User),
		zap.Int("items", len(order.OrderItems)),
		zap.Float64("total", order.Total))

	return order, nil
}

// queueStockDecrement hands the stock update to the worker pool. When the
// pool refuses the task the update runs inline so stock is never skipped.
func (s *OrderService) queueStockDecrement(ctx context.Context, order *model.Order) {
	items := append([]model.OrderItem(nil), order.OrderItems...)
	task := workerpool.Task{
		ID:      order.ID,
		Kind:    TaskKindStockDecrement,
		Context: context.WithoutCancel(ctx),
		Fn: func(ctx context.Context) error {
			return s.decrementStock(ctx, items)
		},
	}

	if err := s.tasks.Submit(task); err != nil {
		s.logger.Warn("Stock decrement not queued, running inline",
			zap.String("order_id", order.ID),
			zap.Error(err))
		if err := task.Fn(task.Context); err != nil {
			s.logger.Error("Stock decrement failed",
				zap.String("order_id", order.ID),
				zap.Error(err))
		}
	}
}

// decrementStock takes each item's quantity off its product and evicts the
// product entries again once the new stock is written. Products deleted since
// the order was placed are skipped.
func (s *OrderService) decrementStock(ctx context.Context, items []model.OrderItem) error {
	ids := make([]string, 0, len(items))
	var failed []error

	for _, item := range items {
		err := s.products.AdjustStock(ctx, item.ProductID, -item.Quantity)
		switch {
		case err == nil:
			ids = append(ids, item.ProductID)
		case errors.Is(err, store.ErrNotFound):
			s.logger.Warn("Ordered product no longer exists",
				zap.String("product_id", item.ProductID))
		default:
			failed = append(failed, fmt.Errorf("product %s: %w", item.ProductID, err))
		}
	}

	if len(ids) > 0 {
		s.invalidation.Invalidate(ctx, model.ProductChanged{ProductIDs: ids})
	}
	return errors.Join(failed...)
}

// AdminOrders returns every order
func (s *OrderService) AdminOrders(ctx context.Context) ([]*model.Order, error) {
	return Cached(ctx, s.cache, KeyAdminOrders, func(ctx context.Context) ([]*model.Order, error) {
		orders, err := s.orders.ListOrders(ctx)
		if err != nil {
			return nil, apperrors.Upstream("failed to list orders", err)
		}
		return orders, nil
	})
}

// UserOrders returns the orders placed by one user
func (s *OrderService) UserOrders(ctx context.Context, userID string) ([]*model.Order, error) {
	if userID == "" {
		return nil, apperrors.Validation("User id is required")
	}
	return Cached(ctx, s.cache, UserOrdersKey(userID), func(ctx context.Context) ([]*model.Order, error) {
		orders, err := s.orders.ListOrdersByUser(ctx, userID)
		if err != nil {
			return nil, apperrors.Upstream("failed to list user orders", err)
		}
		return orders, nil
	})
}

// GetOrder returns one order
func (s *OrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return Cached(ctx, s.cache, OrderKey(id), func(ctx context.Context) (*model.Order, error) {
		order, err := s.orders.GetOrder(ctx, id)
		if err != nil {
			return nil, fromStore(err, "get order", "Order not found")
		}
		return order, nil
	})
}

// ProcessOrder advances the order one lifecycle step. Processing a delivered
// order succeeds and leaves it delivered.
func (s *OrderService) ProcessOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fromStore(err, "get order", "Order not found")
	}

	from := order.Status
	if !from.Valid() {
		s.logger.Warn("Order has unknown status, advancing to delivered",
			zap.String("order_id", order.ID),
			zap.String("status", string(from)))
	}
	change := model.AdvanceStatus(order)

	if err := s.orders.UpdateOrderStatus(ctx, order.ID, order.Status); err != nil {
		return nil, fromStore(err, "update order status", "Order not found")
	}

	s.invalidation.Invalidate(ctx, change)
	s.metrics.RecordOrderTransition(string(from), string(order.Status))

	s.logger.Info("Processed order",
		zap.String("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(order.Status)))

	return order, nil
}

// DeleteOrder removes an order
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return fromStore(err, "get order", "Order not found")
	}
	if err := s.orders.DeleteOrder(ctx, id); err != nil {
		return fromStore(err, "delete order", "Order not found")
	}

	s.invalidation.Invalidate(ctx, model.OrderChanged{UserID: order.User, OrderID: order.ID, Admin: true})

	s.logger.Info("Deleted order",
		zap.String("order_id", id),
		zap.String("user_id", order.User))
	return nil
}
