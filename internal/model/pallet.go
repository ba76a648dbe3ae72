package model

import "time"

// Pallet is an external supply unit holding one product type and a
// depletable quantity. Pallets are deleted once fully drawn down.
type Pallet struct {
	ID        int64     `json:"id"`
	Barcode   string    `json:"barcode"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
