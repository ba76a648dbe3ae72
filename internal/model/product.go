package model

import "github.com/shopspring/decimal"

// Product is a catalog entry describing one product type.
// MaxPerBox is the hard per-box limit copied into boxes when they bind
// to the product; it is treated as immutable once registered.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Weight    decimal.Decimal `json:"weight"`
	MaxPerBox int             `json:"max_per_box"`
}

// StockStatus is the per-product total quantity across all boxes.
type StockStatus struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	TotalQuantity int    `json:"total_quantity"`
}
