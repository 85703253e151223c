package model

import "time"

// Photo is an already-hosted product image.
type Photo struct {
	PublicID string `json:"public_id" validate:"required"`
	URL      string `json:"url" validate:"required"`
}

// Product represents a catalog entry. Ratings and NumOfRatings are derived
// from the product's reviews and are only written by the rating aggregator.
type Product struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Photos       []Photo   `json:"photos"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	Stock        int       `json:"stock"`
	Description  string    `json:"description"`
	Ratings      float64   `json:"ratings"`
	NumOfRatings int       `json:"numOfRatings"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no slices with p.
func (p *Product) Clone() *Product {
	c := *p
	c.Photos = append([]Photo(nil), p.Photos...)
	return &c
}

// ProductSort orders search results by price.
type ProductSort string

const (
	SortNone      ProductSort = ""
	SortPriceAsc  ProductSort = "asc"
	SortPriceDesc ProductSort = "dsc"
)

// ProductQuery filters the catalog search.
type ProductQuery struct {
	Search   string
	MinPrice float64
	MaxPrice float64
	Category string
	Sort     ProductSort
	Limit    int
	Skip     int
}
