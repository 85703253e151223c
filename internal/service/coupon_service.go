package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
)

// CouponUpdate changes the code, the amount or both. Zero values are left
// unchanged.
type CouponUpdate struct {
	Code   string
	Amount float64
}

// CouponService manages discount coupons
type CouponService struct {
	coupons store.CouponStore
	clock   clockwork.Clock
	logger  *zap.Logger
}

// NewCouponService creates a new coupon service
func NewCouponService(coupons store.CouponStore, clock clockwork.Clock, logger *zap.Logger) *CouponService {
	return &CouponService{
		coupons: coupons,
		clock:   clock,
		logger:  logger,
	}
}

// CreateCoupon stores a new coupon. Codes are unique.
func (s *CouponService) CreateCoupon(ctx context.Context, code string, amount float64) (*model.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" || amount <= 0 {
		return nil, apperrors.Validation("Please provide all fields")
	}

	now := s.clock.Now()
	coupon := &model.Coupon{
		ID:        uuid.NewString(),
		Code:      code,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.coupons.CreateCoupon(ctx, coupon); err != nil {
		return nil, couponWriteErr(err, "create coupon")
	}

	s.logger.Info("Created coupon",
		zap.String("coupon_id", coupon.ID),
		zap.String("code", coupon.Code),
		zap.Float64("amount", coupon.Amount))

	return coupon, nil
}

// ListCoupons returns every coupon
func (s *CouponService) ListCoupons(ctx context.Context) ([]*model.Coupon, error) {
	coupons, err := s.coupons.ListCoupons(ctx)
	if err != nil {
		return nil, apperrors.Upstream("failed to list coupons", err)
	}
	return coupons, nil
}

// GetCoupon returns one coupon
func (s *CouponService) GetCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	coupon, err := s.coupons.GetCoupon(ctx, id)
	if err != nil {
		return nil, fromStore(err, "get coupon", "Coupon not found")
	}
	return coupon, nil
}

// UpdateCoupon applies a partial update
func (s *CouponService) UpdateCoupon(ctx context.Context, id string, update CouponUpdate) (*model.Coupon, error) {
	update.Code = strings.TrimSpace(update.Code)
	if update.Code == "" && update.Amount <= 0 {
		return nil, apperrors.Validation("Please provide coupon or amount")
	}

	coupon, err := s.coupons.GetCoupon(ctx, id)
	if err != nil {
		return nil, fromStore(err, "get coupon", "Coupon not found")
	}
	if update.Code != "" {
		coupon.Code = update.Code
	}
	if update.Amount > 0 {
		coupon.Amount = update.Amount
	}
	coupon.UpdatedAt = s.clock.Now()

	if err := s.coupons.UpdateCoupon(ctx, coupon); err != nil {
		return nil, couponWriteErr(err, "update coupon")
	}

	s.logger.Info("Updated coupon", zap.String("coupon_id", id))
	return coupon, nil
}

// DeleteCoupon removes a coupon and returns it
func (s *CouponService) DeleteCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	coupon, err := s.coupons.DeleteCoupon(ctx, id)
	if err != nil {
		return nil, fromStore(err, "delete coupon", "Coupon not found")
	}
	s.logger.Info("Deleted coupon", zap.String("coupon_id", id))
	return coupon, nil
}

func couponWriteErr(err error, op string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperrors.Conflict("Coupon code already exists", err)
	}
	return fromStore(err, op, "Coupon not found")
}
