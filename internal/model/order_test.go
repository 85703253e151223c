package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Next(t *testing.T) {
	assert.Equal(t, OrderStatusShipped, OrderStatusProcessing.Next())
	assert.Equal(t, OrderStatusDelivered, OrderStatusShipped.Next())
	assert.Equal(t, OrderStatusDelivered, OrderStatusDelivered.Next())
	assert.Equal(t, OrderStatusDelivered, OrderStatus("Cancelled").Next())

	assert.True(t, OrderStatusShipped.Valid())
	assert.False(t, OrderStatus("Cancelled").Valid())
}

func TestAdvanceStatus_FullLifecycle(t *testing.T) {
	order := &Order{ID: "o1", User: "u1", Status: OrderStatusProcessing}

	change := AdvanceStatus(order)
	assert.Equal(t, OrderStatusShipped, order.Status)
	assert.Equal(t, OrderChanged{UserID: "u1", OrderID: "o1", Admin: true}, change)

	AdvanceStatus(order)
	assert.Equal(t, OrderStatusDelivered, order.Status)

	// Delivered is terminal and re-applying is not an error.
	change = AdvanceStatus(order)
	assert.Equal(t, OrderStatusDelivered, order.Status)
	assert.Equal(t, "o1", change.OrderID)
}

func TestOrder_CloneAndProductIDs(t *testing.T) {
	order := &Order{
		ID: "o1",
		OrderItems: []OrderItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 3},
		},
	}

	clone := order.Clone()
	clone.OrderItems[0].Quantity = 9

	assert.Equal(t, 1, order.OrderItems[0].Quantity)
	assert.Equal(t, []string{"p1", "p2"}, order.ProductIDs())
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, RatingSummary{}, Summarize(nil))

	summary := Summarize([]*Review{{Rating: 4}, {Rating: 2}})
	assert.Equal(t, 3.0, summary.AverageRating)
	assert.Equal(t, 2, summary.NumOfReviews)
}

func TestUser_Age(t *testing.T) {
	u := &User{DOB: time.Date(2000, time.June, 15, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 25, u.Age(time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 26, u.Age(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)))
}
