package model

// Box is a bounded-capacity container holding zero or one product type.
// A non-empty box always has a product bound and MaxCapacity > 0. A
// depleted box keeps its last product binding until explicitly cleared.
type Box struct {
	ID          int64   `json:"id"`
	Barcode     string  `json:"barcode"`
	ProductID   *int64  `json:"product_id,omitempty"`
	Quantity    int     `json:"quantity"`
	MaxCapacity int     `json:"max_capacity"`
	SlotID      *string `json:"slot_id,omitempty"`
}

// FreeSpace returns the remaining capacity. Unbound boxes have no
// capacity until a product is assigned.
func (b *Box) FreeSpace() int {
	if b.MaxCapacity <= b.Quantity {
		return 0
	}
	return b.MaxCapacity - b.Quantity
}

// Bound reports whether the box is bound to a product type.
func (b *Box) Bound() bool { return b.ProductID != nil }
