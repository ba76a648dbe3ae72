package model

// SlotStatus describes what occupies a physical slot.
type SlotStatus string

const (
	SlotEmpty           SlotStatus = "EMPTY"
	SlotBoxEmpty        SlotStatus = "BOX_EMPTY"
	SlotBoxWithProducts SlotStatus = "BOX_WITH_PRODUCTS"
)

// Slot is a physical warehouse location, keyed by a structured code
// such as "A0105" (aisle + column + slot index). Slots are managed by
// the slot registry, not by the allocation engine.
type Slot struct {
	ID         string     `json:"id"`
	Aisle      string     `json:"aisle"`
	Col        int        `json:"col"`
	Slot       int        `json:"slot"`
	Status     SlotStatus `json:"status"`
	BoxBarcode *string    `json:"box_barcode,omitempty"`
}
