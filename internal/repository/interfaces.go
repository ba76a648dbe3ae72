package repository

import (
	"context"

	"warehub-core-api/internal/model"

	"github.com/shopspring/decimal"
)

// CatalogRepository defines product type registry access.
type CatalogRepository interface {
	// Register adds a product type. A repeated name is rejected with
	// ErrDuplicateName, never merged.
	Register(ctx context.Context, name string, weight decimal.Decimal, maxPerBox int) (int64, error)

	// Lookup returns the product by id or ErrProductNotFound.
	Lookup(ctx context.Context, id int64) (*model.Product, error)

	// LookupByName returns the product by exact name or ErrProductNotFound.
	LookupByName(ctx context.Context, name string) (*model.Product, error)

	// Search returns products whose name contains the query
	// (case-insensitive), ordered by name.
	Search(ctx context.Context, query string) ([]model.Product, error)

	// Count returns the number of registered products.
	Count(ctx context.Context) (int64, error)
}

// BoxRepository defines box store access.
type BoxRepository interface {
	// CreateBox creates a box, optionally bound to a product. The box
	// capacity is copied from the product's max_per_box at bind time.
	CreateBox(ctx context.Context, productID *int64, initialQuantity int) (string, error)

	// FindBoxWithSpace returns the first box (ascending id) bound to the
	// product with free space, or nil when none exists.
	FindBoxWithSpace(ctx context.Context, productID int64) (*model.Box, error)

	// AddToBox adds delta units to a box, binding it to productID when
	// the box is unbound.
	AddToBox(ctx context.Context, boxID int64, delta int, productID *int64) error

	// DeleteBox removes a box. Returns false without error when the box
	// still holds units or a product binding.
	DeleteBox(ctx context.Context, id int64) (bool, error)

	// ListBoxes returns a read-only snapshot of all boxes.
	ListBoxes(ctx context.Context) ([]model.Box, error)

	// CountEmpty returns the number of boxes holding zero units.
	CountEmpty(ctx context.Context) (int, error)

	// StockStatus returns per-product totals across all boxes.
	StockStatus(ctx context.Context) ([]model.StockStatus, error)
}

// PalletRepository defines external pallet store access.
type PalletRepository interface {
	// Receive registers an incoming pallet. Pallets are never created
	// for unknown products (ErrProductNotFound).
	Receive(ctx context.Context, productID int64, quantity int, label string) (int64, error)

	// TotalAvailable sums quantities across all pallets of the product.
	TotalAvailable(ctx context.Context, productID int64) (int, error)

	// Withdraw draws quantity oldest-first across matching pallets,
	// deleting depleted ones. Returns the amount actually withdrawn,
	// which may be less than requested (partial success, not an error).
	Withdraw(ctx context.Context, productID int64, quantity int) (int, error)

	// ListPallets returns a read-only snapshot of all pallets.
	ListPallets(ctx context.Context) ([]model.Pallet, error)
}

// EventRepository defines the durable event queue.
type EventRepository interface {
	// Enqueue appends a PENDING event with a server-assigned timestamp.
	// Empty or unknown types are rejected with ErrInvalidEventType.
	Enqueue(ctx context.Context, eventType string, payload interface{}) (int64, error)

	// Pending returns PENDING events in arrival order.
	Pending(ctx context.Context) ([]model.Event, error)

	// List returns all events in arrival order (the audit trail).
	List(ctx context.Context) ([]model.Event, error)

	// MarkProcessed transitions an event PENDING->PROCESSED.
	MarkProcessed(ctx context.Context, id int64) error

	// MarkFailed transitions an event PENDING->FAILED with the error text.
	MarkFailed(ctx context.Context, id int64, message string) error
}

// SlotRepository defines the slot registry, an external collaborator
// fully decoupled from the allocation engine.
type SlotRepository interface {
	// Generate creates the slot grid. Idempotent: skips when slots exist.
	Generate(ctx context.Context, aisles, columns, slotsPerColumn int) (int, error)

	// FreeSlot returns the first EMPTY slot, or nil when none is free.
	FreeSlot(ctx context.Context) (*model.Slot, error)

	// AssignBox records a box occupying a slot with the given status.
	AssignBox(ctx context.Context, slotID, boxBarcode string, status model.SlotStatus) error

	// Close releases resources held by the registry backend.
	Close() error
}

// StockTx exposes the row-level operations the allocation engine
// composes inside one transaction.
type StockTx interface {
	Product(ctx context.Context, id int64) (*model.Product, error)
	TotalAvailable(ctx context.Context, productID int64) (int, error)
	Withdraw(ctx context.Context, productID int64, quantity int) (int, error)
	FindBoxWithSpace(ctx context.Context, productID int64) (*model.Box, error)
	CreateBox(ctx context.Context, product *model.Product, quantity int) (string, error)
	Box(ctx context.Context, id int64) (*model.Box, error)
	AddToBox(ctx context.Context, box *model.Box, delta int, bind *model.Product) error
	Pallet(ctx context.Context, id int64) (*model.Pallet, error)
	DrainPallet(ctx context.Context, pallet *model.Pallet, take int) error
	SetBoxSlot(ctx context.Context, boxID int64, slotID string) error
}

// StockRepository provides the transaction scope the allocation engine
// runs in. Everything inside fn commits or rolls back as one unit.
type StockRepository interface {
	InTx(ctx context.Context, fn func(tx StockTx) error) error
}
