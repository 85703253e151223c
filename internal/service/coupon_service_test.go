package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
)

func TestCouponService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCouponService(env.store, env.clock, env.logger)
	ctx := context.Background()

	coupon, err := svc.CreateCoupon(ctx, "SAVE10", 10)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", coupon.Code)

	_, err = svc.CreateCoupon(ctx, "SAVE10", 20)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	updated, err := svc.UpdateCoupon(ctx, coupon.ID, CouponUpdate{Amount: 15})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", updated.Code)
	assert.Equal(t, 15.0, updated.Amount)

	got, err := svc.GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.Amount)

	all, err := svc.ListCoupons(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	deleted, err := svc.DeleteCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, coupon.ID, deleted.ID)

	_, err = svc.GetCoupon(ctx, coupon.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, "Coupon not found", err.Error())
}

func TestCouponService_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCouponService(env.store, env.clock, env.logger)
	ctx := context.Background()

	_, err := svc.CreateCoupon(ctx, "", 10)
	assert.Equal(t, "Please provide all fields", err.Error())
	_, err = svc.CreateCoupon(ctx, "X", 0)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.UpdateCoupon(ctx, "any", CouponUpdate{})
	assert.Equal(t, "Please provide coupon or amount", err.Error())

	_, err = svc.UpdateCoupon(ctx, "missing", CouponUpdate{Code: "NEW"})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestCouponService_UpdateToTakenCodeConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCouponService(env.store, env.clock, env.logger)
	ctx := context.Background()

	_, err := svc.CreateCoupon(ctx, "A", 5)
	require.NoError(t, err)
	b, err := svc.CreateCoupon(ctx, "B", 5)
	require.NoError(t, err)

	_, err = svc.UpdateCoupon(ctx, b.ID, CouponUpdate{Code: "A"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}
