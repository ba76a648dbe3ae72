package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"warehub-core-api/internal/model"
	"warehub-core-api/internal/repository"
)

// DispatcherConfig holds configuration for the dispatcher loop.
type DispatcherConfig struct {
	// DrainInterval is how often pending events are drained.
	// Default: 2 seconds.
	DrainInterval time.Duration
}

// Dispatcher is the single consumer of the event queue. It drains
// pending events in arrival order and routes each to its handler; one
// event is in flight at a time and a failed event never stops the batch.
type Dispatcher struct {
	events    repository.EventRepository
	catalog   repository.CatalogRepository
	pallets   repository.PalletRepository
	engine    *AllocationEngine
	warehouse *WarehouseService

	config    DispatcherConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	drainMu   sync.Mutex
	isRunning bool
	mu        sync.Mutex
}

// NewDispatcher creates a new event dispatcher.
func NewDispatcher(
	events repository.EventRepository,
	catalog repository.CatalogRepository,
	pallets repository.PalletRepository,
	engine *AllocationEngine,
	warehouse *WarehouseService,
	config DispatcherConfig,
) *Dispatcher {
	if config.DrainInterval == 0 {
		config.DrainInterval = 2 * time.Second
	}
	return &Dispatcher{
		events:    events,
		catalog:   catalog,
		pallets:   pallets,
		engine:    engine,
		warehouse: warehouse,
		config:    config,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the dispatcher loop.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return
	}
	d.isRunning = true
	d.ticker = time.NewTicker(d.config.DrainInterval)
	d.mu.Unlock()

	log.Printf("[Dispatcher] Started - interval: %v", d.config.DrainInterval)

	go d.run()
}

// run is the main dispatcher loop.
func (d *Dispatcher) run() {
	d.drainOnce()
	for {
		select {
		case <-d.ticker.C:
			d.drainOnce()
		case <-d.stopCh:
			log.Printf("[Dispatcher] Stopped")
			return
		}
	}
}

func (d *Dispatcher) drainOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := d.Drain(ctx); err != nil {
		log.Printf("[Dispatcher] Drain error: %v", err)
	}
}

// Stop stops the dispatcher loop.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		if d.ticker != nil {
			d.ticker.Stop()
		}
		close(d.stopCh)
		d.isRunning = false
	})
}

// Drain fetches all pending events in arrival order and attempts each
// one exactly once. The outcome is persisted after the handler returns:
// PROCESSED on success, FAILED with the error text otherwise. A handler
// failure never aborts the batch. Returns the number of events attempted.
func (d *Dispatcher) Drain(ctx context.Context) (int, error) {
	d.drainMu.Lock()
	defer d.drainMu.Unlock()

	pending, err := d.events.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for _, ev := range pending {
		if err := d.handle(ctx, ev); err != nil {
			log.Printf("[Dispatcher] Event %d (%s) failed: %v", ev.ID, ev.Type, err)
			if markErr := d.events.MarkFailed(ctx, ev.ID, err.Error()); markErr != nil {
				log.Printf("[Dispatcher] Failed to mark event %d failed: %v", ev.ID, markErr)
			}
			continue
		}
		if markErr := d.events.MarkProcessed(ctx, ev.ID); markErr != nil {
			log.Printf("[Dispatcher] Failed to mark event %d processed: %v", ev.ID, markErr)
		}
	}

	if len(pending) > 0 && d.warehouse != nil {
		d.warehouse.InvalidateStockStatus(ctx)
	}
	return len(pending), nil
}

// handle routes one event to its handler. The type set is closed;
// unknown tags are swallowed so rows written by newer producers do not
// wedge the queue.
func (d *Dispatcher) handle(ctx context.Context, ev model.Event) error {
	switch ev.Type {
	case model.EventAddProductType:
		var p model.AddProductTypePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		_, err := d.catalog.Register(ctx, p.Name, p.Weight, p.MaxPerBox)
		return err

	case model.EventAddProductsToStock:
		var p model.AddProductsToStockPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		productID, err := d.resolveProduct(ctx, p.ProductID, p.ProductName)
		if err != nil {
			return err
		}
		return d.engine.Stock(ctx, productID, p.Quantity)

	case model.EventAddPallet:
		var p model.AddPalletPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		productID, err := d.resolveProduct(ctx, p.ProductID, p.ProductName)
		if err != nil {
			return err
		}
		_, err = d.pallets.Receive(ctx, productID, p.Quantity, p.PalletName)
		return err

	default:
		log.Printf("[Dispatcher] Unknown event type %q (id=%d), marking processed", ev.Type, ev.ID)
		return nil
	}
}

// resolveProduct resolves a payload product reference by id, falling
// back to the name.
func (d *Dispatcher) resolveProduct(ctx context.Context, id int64, name string) (int64, error) {
	if id != 0 {
		if _, err := d.catalog.Lookup(ctx, id); err != nil {
			return 0, err
		}
		return id, nil
	}
	product, err := d.catalog.LookupByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return product.ID, nil
}
