package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
)

type orderRequest struct {
	ShippingInfo model.ShippingInfo `json:"shippingInfo" validate:"required"`
	OrderItems   []model.OrderItem  `json:"orderItems" validate:"required,min=1,dive"`
	Total        float64            `json:"total" validate:"gt=0"`
}

type userRequest struct {
	Name   string `json:"name" validate:"required"`
	Gender string `json:"gender" validate:"required,gender"`
}

func validOrder() orderRequest {
	return orderRequest{
		ShippingInfo: model.ShippingInfo{Address: "1 Main St", City: "Pune", State: "MH", Country: "India", PinCode: 411001},
		OrderItems:   []model.OrderItem{{Name: "Laptop", Price: 900, Quantity: 1, Photo: "p.jpg", ProductID: "p1"}},
		Total:        900,
	}
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	t.Run("valid payload", func(t *testing.T) {
		assert.NoError(t, v.Struct(validOrder()))
	})

	t.Run("missing items", func(t *testing.T) {
		req := validOrder()
		req.OrderItems = nil

		err := v.Struct(req)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindValidation))
		assert.Equal(t, "orderItems is required", err.Error())
	})

	t.Run("nested fields use json names", func(t *testing.T) {
		req := validOrder()
		req.ShippingInfo.City = ""
		req.OrderItems[0].Quantity = 0

		err := v.Struct(req)
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Details, "shippingInfo.city")
		assert.Contains(t, appErr.Details, "orderItems[0].quantity")
	})

	t.Run("custom gender rule", func(t *testing.T) {
		err := v.Struct(userRequest{Name: "A", Gender: "other"})
		require.Error(t, err)
		assert.Equal(t, "gender must be male or female", err.Error())

		assert.NoError(t, v.Struct(userRequest{Name: "A", Gender: "female"}))
	})
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.NoError(t, Default().Var("abc", "required,min=3"))
}
