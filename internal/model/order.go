package model

import "time"

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// Next returns the status an order moves to when it is processed.
// Delivered is terminal: processing a delivered order leaves it delivered.
// Unknown statuses also resolve to Delivered.
func (s OrderStatus) Next() OrderStatus {
	switch s {
	case OrderStatusProcessing:
		return OrderStatusShipped
	case OrderStatusShipped:
		return OrderStatusDelivered
	default:
		return OrderStatusDelivered
	}
}

// Valid reports whether s is one of the three known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	default:
		return false
	}
}

// ShippingInfo is the delivery address captured with an order.
type ShippingInfo struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Country string `json:"country" validate:"required"`
	PinCode int    `json:"pinCode" validate:"required"`
}

// OrderItem is a snapshot of a product taken when the order was placed. It
// does not follow later changes to the product.
type OrderItem struct {
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Photo     string  `json:"photo" validate:"required"`
	ProductID string  `json:"productId" validate:"required"`
}

// Order represents a placed order
type Order struct {
	ID              string       `json:"_id"`
	ShippingInfo    ShippingInfo `json:"shippingInfo"`
	User            string       `json:"user"`
	Subtotal        float64      `json:"subtotal"`
	Tax             float64      `json:"tax"`
	ShippingCharges float64      `json:"shippingCharges"`
	Discount        float64      `json:"discount"`
	Total           float64      `json:"total"`
	Status          OrderStatus  `json:"status"`
	OrderItems      []OrderItem  `json:"orderItems"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Clone returns a copy that shares no slices with o.
func (o *Order) Clone() *Order {
	c := *o
	c.OrderItems = append([]OrderItem(nil), o.OrderItems...)
	return &c
}

// ProductIDs returns the product referenced by each item, in item order.
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// AdvanceStatus moves the order one step along its lifecycle and returns the
// change the caller must hand to the invalidation service once the new status
// is persisted.
func AdvanceStatus(o *Order) OrderChanged {
	o.Status = o.Status.Next()
	return OrderChanged{
		UserID:  o.User,
		OrderID: o.ID,
		Admin:   true,
	}
}
