package model

// Dashboard response shapes. Field names follow the JSON consumed by the admin
// dashboard.

// PercentageStats holds month-over-month change for each headline figure.
type PercentageStats struct {
	Revenue  float64 `json:"revenue"`
	Products float64 `json:"products"`
	Orders   float64 `json:"orders"`
	Users    float64 `json:"users"`
}

// CountStats holds all-time totals.
type CountStats struct {
	Products int64   `json:"products"`
	Orders   int64   `json:"orders"`
	Users    int64   `json:"users"`
	Revenue  float64 `json:"revenue"`
}

// LatestTransaction summarizes a recent order.
type LatestTransaction struct {
	ID       string      `json:"_id"`
	Discount float64     `json:"discount"`
	Quantity int         `json:"quantity"`
	Amount   float64     `json:"amount"`
	Status   OrderStatus `json:"status"`
}

// UserRatio splits users by gender.
type UserRatio struct {
	Male   int64 `json:"male"`
	Female int64 `json:"female"`
}

// DashboardStats is the payload of the dashboard overview.
type DashboardStats struct {
	LatestTransactions []LatestTransaction `json:"latestTransactions"`
	UserRatio          UserRatio           `json:"userRatio"`
	Categories         []string            `json:"categories"`
	CategoryCount      []map[string]int    `json:"categoryCount"`
	Chart              struct {
		Order   []float64 `json:"order"`
		Revenue []float64 `json:"revenue"`
	} `json:"chart"`
	Stats struct {
		Percentage PercentageStats `json:"percentage"`
		Counts     CountStats      `json:"counts"`
	} `json:"stats"`
}

// FulfillmentRatio counts orders per status.
type FulfillmentRatio struct {
	Processing int64 `json:"processing"`
	Shipped    int64 `json:"shipped"`
	Delivered  int64 `json:"delivered"`
}

// StockAvailability splits products by whether any stock remains.
type StockAvailability struct {
	OutOfStock int64 `json:"outOfStock"`
	InStock    int64 `json:"inStock"`
}

// RevenueDistribution breaks total revenue into cost buckets.
type RevenueDistribution struct {
	NetMargin      float64 `json:"netMargin"`
	TotalRevenue   float64 `json:"totalRevenue"`
	Discount       float64 `json:"discount"`
	ProductionCost float64 `json:"productionCost"`
	Burnt          float64 `json:"burnt"`
	MarketingCost  float64 `json:"marketingCost"`
}

// AgeDistribution buckets users by age.
type AgeDistribution struct {
	Teen  int `json:"teen"`
	Adult int `json:"adult"`
	Elder int `json:"elder"`
}

// RoleSplit counts admins against customers.
type RoleSplit struct {
	Admin    int64 `json:"admin"`
	Customer int64 `json:"customer"`
}

// PieCharts is the payload of the pie chart view.
type PieCharts struct {
	FulfillmentRatio    FulfillmentRatio    `json:"fullfillmentRatio"`
	InventoryRatio      []map[string]int    `json:"inventoryRatio"`
	StockAvailability   StockAvailability   `json:"stockAvailability"`
	RevenueDistribution RevenueDistribution `json:"revenueDistribution"`
	AgeDistribution     AgeDistribution     `json:"ageDistribution"`
	Users               RoleSplit           `json:"users"`
}

// BarCharts is the payload of the bar chart view.
type BarCharts struct {
	Product []float64 `json:"product"`
	Users   []float64 `json:"users"`
	Orders  []float64 `json:"orders"`
}

// LineCharts is the payload of the line chart view.
type LineCharts struct {
	Product  []float64 `json:"product"`
	Users    []float64 `json:"users"`
	Discount []float64 `json:"discount"`
	Revenue  []float64 `json:"revenue"`
}
