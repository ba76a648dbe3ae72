package repository

import "errors"

// Domain errors surfaced by the warehouse repositories. Storage-level
// failures are wrapped with fmt.Errorf and carry the driver error.
var (
	ErrInvalidProductSpec = errors.New("invalid product spec")
	ErrDuplicateName      = errors.New("product name already registered")
	ErrProductNotFound    = errors.New("product not found")
	ErrBoxNotFound        = errors.New("box not found")
	ErrPalletNotFound     = errors.New("pallet not found")
	ErrSlotNotFound       = errors.New("slot not found")
	ErrCapacityExceeded   = errors.New("box capacity exceeded")
	ErrProductMismatch    = errors.New("box is bound to a different product")
	ErrInvalidEventType   = errors.New("invalid event type")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)
