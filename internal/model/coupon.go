package model

import "time"

// Coupon is a discount code worth a fixed amount.
type Coupon struct {
	ID        string    `json:"_id"`
	Code      string    `json:"code"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
