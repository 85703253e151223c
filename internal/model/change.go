package model

// Change describes which cached data a mutation made stale. The set of
// variants is closed: ProductChanged, OrderChanged and BothChanged.
type Change interface {
	isChange()
}

// ProductChanged marks the product domain as affected. ProductIDs name the
// individual products whose detail entries must also go.
type ProductChanged struct {
	ProductIDs []string
	// Admin is accepted for parity with order changes and drives nothing.
	Admin bool
}

// OrderChanged marks the order domain as affected for one user and one order.
type OrderChanged struct {
	UserID  string
	OrderID string
	// Admin is accepted and drives nothing.
	Admin bool
}

// BothChanged affects the product and the order domain together, as placing
// an order does.
type BothChanged struct {
	Product ProductChanged
	Order   OrderChanged
}

func (ProductChanged) isChange() {}
func (OrderChanged) isChange()   {}
func (BothChanged) isChange()    {}
