package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"warehub-core-api/internal/cache"
	"warehub-core-api/internal/model"
	"warehub-core-api/internal/repository"

	"github.com/shopspring/decimal"
)

const stockStatusKey = "stock:status"

// WarehouseService exposes the read projections and the direct (non
// queued) operations consumed by the API layer.
type WarehouseService struct {
	catalog  repository.CatalogRepository
	boxes    repository.BoxRepository
	pallets  repository.PalletRepository
	events   repository.EventRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewWarehouseService creates a new warehouse service. cache is optional.
func NewWarehouseService(
	catalog repository.CatalogRepository,
	boxes repository.BoxRepository,
	pallets repository.PalletRepository,
	events repository.EventRepository,
	c cache.Cache,
	cacheTTL time.Duration,
) *WarehouseService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &WarehouseService{
		catalog:  catalog,
		boxes:    boxes,
		pallets:  pallets,
		events:   events,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// RegisterProduct registers a product type directly, outside the queue.
func (s *WarehouseService) RegisterProduct(ctx context.Context, name string, weight decimal.Decimal, maxPerBox int) (*model.Product, error) {
	id, err := s.catalog.Register(ctx, name, weight, maxPerBox)
	if err != nil {
		return nil, err
	}
	return s.catalog.Lookup(ctx, id)
}

// GetProduct returns the product by id.
func (s *WarehouseService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.catalog.Lookup(ctx, id)
}

// SearchProducts returns products matching the query, ordered by name.
func (s *WarehouseService) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	return s.catalog.Search(ctx, query)
}

// GetStockStatus returns per-product totals across all boxes, served
// from cache when fresh.
func (s *WarehouseService) GetStockStatus(ctx context.Context) ([]model.StockStatus, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, stockStatusKey); err == nil {
			var status []model.StockStatus
			if err := json.Unmarshal(data, &status); err == nil {
				return status, nil
			}
		}
	}

	status, err := s.boxes.StockStatus(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(status); err == nil {
			if err := s.cache.Set(ctx, stockStatusKey, data, s.cacheTTL); err != nil {
				log.Printf("[WarehouseService] Failed to cache stock status: %v", err)
			}
		}
	}
	return status, nil
}

// InvalidateStockStatus drops the cached stock projection after a
// mutation.
func (s *WarehouseService) InvalidateStockStatus(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, stockStatusKey); err != nil {
		log.Printf("[WarehouseService] Failed to invalidate stock status cache: %v", err)
	}
}

// CreateBox creates a box, optionally pre-bound to a product.
func (s *WarehouseService) CreateBox(ctx context.Context, productID *int64, initialQuantity int) (string, error) {
	barcode, err := s.boxes.CreateBox(ctx, productID, initialQuantity)
	if err != nil {
		return "", err
	}
	if initialQuantity > 0 {
		s.InvalidateStockStatus(ctx)
	}
	return barcode, nil
}

// DeleteBox deletes an empty, unbound box. Returns false when the box
// cannot be deleted.
func (s *WarehouseService) DeleteBox(ctx context.Context, id int64) (bool, error) {
	return s.boxes.DeleteBox(ctx, id)
}

// ListBoxes returns a snapshot of all boxes.
func (s *WarehouseService) ListBoxes(ctx context.Context) ([]model.Box, error) {
	return s.boxes.ListBoxes(ctx)
}

// ReceivePallet registers an incoming pallet directly, outside the queue.
func (s *WarehouseService) ReceivePallet(ctx context.Context, productID int64, quantity int, label string) (int64, error) {
	return s.pallets.Receive(ctx, productID, quantity, label)
}

// ListPallets returns a snapshot of all pallets.
func (s *WarehouseService) ListPallets(ctx context.Context) ([]model.Pallet, error) {
	return s.pallets.ListPallets(ctx)
}

// EnqueueEvent appends a mutation request to the queue.
func (s *WarehouseService) EnqueueEvent(ctx context.Context, eventType string, payload json.RawMessage) (int64, error) {
	if len(payload) == 0 {
		return s.events.Enqueue(ctx, eventType, nil)
	}
	return s.events.Enqueue(ctx, eventType, payload)
}

// PendingEvents returns the queued-but-unprocessed events.
func (s *WarehouseService) PendingEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.Pending(ctx)
}

// Events returns the full audit trail.
func (s *WarehouseService) Events(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// sampleProduct is one seed catalog entry.
type sampleProduct struct {
	name      string
	weight    string
	maxPerBox int
}

var sampleProducts = []sampleProduct{
	{"Cookie Box", "0.3", 30},
	{"Screw Pack", "0.5", 50},
	{"Patelnia Pro", "2.2", 5},
	{"Wrench Set", "1.5", 10},
	{"Toy Car", "0.7", 15},
	{"Laptop Sleeve", "0.9", 8},
	{"Glass Bottle", "0.4", 20},
	{"Keyboard", "1.1", 6},
	{"LED Bulb Pack", "0.2", 40},
	{"Cable Roll", "1.0", 12},
}

// SeedSampleProducts registers the sample catalog, skipping entirely
// when any products already exist. Returns the number seeded.
func (s *WarehouseService) SeedSampleProducts(ctx context.Context) (int, error) {
	count, err := s.catalog.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Printf("[WarehouseService] %d products already exist, seeding skipped", count)
		return 0, nil
	}

	seeded := 0
	for _, sp := range sampleProducts {
		weight, err := decimal.NewFromString(sp.weight)
		if err != nil {
			return seeded, err
		}
		if _, err := s.catalog.Register(ctx, sp.name, weight, sp.maxPerBox); err != nil {
			return seeded, err
		}
		seeded++
	}

	log.Printf("[WarehouseService] Seeded %d sample products", seeded)
	return seeded, nil
}

// Stats returns row counts for the admin surface.
func (s *WarehouseService) Stats(ctx context.Context) (map[string]interface{}, error) {
	products, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, err
	}
	boxes, err := s.boxes.ListBoxes(ctx)
	if err != nil {
		return nil, err
	}
	emptyBoxes, err := s.boxes.CountEmpty(ctx)
	if err != nil {
		return nil, err
	}
	pallets, err := s.pallets.ListPallets(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.events.Pending(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"products":       products,
		"boxes":          len(boxes),
		"empty_boxes":    emptyBoxes,
		"pallets":        len(pallets),
		"pending_events": len(pending),
	}, nil
}
