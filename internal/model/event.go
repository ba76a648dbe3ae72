package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Event types understood by the dispatcher.
const (
	EventAddProductType     = "ADD_PRODUCT_TYPE"
	EventAddProductsToStock = "ADD_PRODUCTS_TO_STOCK"
	EventAddPallet          = "ADD_PALLET"
)

// KnownEventType reports whether t belongs to the closed set accepted
// at enqueue time. The dispatcher still tolerates unknown tags on rows
// written out-of-band.
func KnownEventType(t string) bool {
	switch t {
	case EventAddProductType, EventAddProductsToStock, EventAddPallet:
		return true
	}
	return false
}

// EventStatus is the lifecycle state of a queued event.
type EventStatus string

const (
	EventPending   EventStatus = "PENDING"
	EventProcessed EventStatus = "PROCESSED"
	EventFailed    EventStatus = "FAILED"
)

// Event is a queued mutation request. Events move PENDING->PROCESSED or
// PENDING->FAILED exactly once and are never deleted; the table is the
// audit trail.
type Event struct {
	ID           int64           `json:"id"`
	Type         string          `json:"event_type"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Status       EventStatus     `json:"status"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

// AddProductTypePayload is the payload for ADD_PRODUCT_TYPE events.
type AddProductTypePayload struct {
	Name      string          `json:"name"`
	Weight    decimal.Decimal `json:"weight"`
	MaxPerBox int             `json:"max_per_box"`
}

// AddProductsToStockPayload is the payload for ADD_PRODUCTS_TO_STOCK
// events. ProductName is used to resolve the product when ProductID is
// absent.
type AddProductsToStockPayload struct {
	ProductID   int64  `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
}

// AddPalletPayload is the payload for ADD_PALLET events.
type AddPalletPayload struct {
	PalletName  string `json:"pallet_name"`
	ProductID   int64  `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
}
