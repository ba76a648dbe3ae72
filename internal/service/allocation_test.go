package service

import (
	"context"
	"path/filepath"
	"testing"

	"warehub-core-api/internal/cache"
	"warehub-core-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	catalog    repository.CatalogRepository
	boxes      repository.BoxRepository
	pallets    repository.PalletRepository
	events     repository.EventRepository
	slots      repository.SlotRepository
	engine     *AllocationEngine
	warehouse  *WarehouseService
	dispatcher *Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := repository.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		catalog: repository.NewSQLiteCatalogRepository(store),
		boxes:   repository.NewSQLiteBoxRepository(store),
		pallets: repository.NewSQLitePalletRepository(store),
		events:  repository.NewSQLiteEventRepository(store),
		slots:   repository.NewSQLiteSlotRepository(store),
	}
	env.engine = NewAllocationEngine(repository.NewSQLiteStockRepository(store), env.slots)
	env.warehouse = NewWarehouseService(
		env.catalog, env.boxes, env.pallets, env.events, cache.NewMemoryCache(), 0)
	env.dispatcher = NewDispatcher(
		env.events, env.catalog, env.pallets, env.engine, env.warehouse, DispatcherConfig{})
	return env
}

func (e *testEnv) registerProduct(t *testing.T, name string, maxPerBox int) int64 {
	t.Helper()

	id, err := e.catalog.Register(context.Background(), name, decimal.RequireFromString("1.0"), maxPerBox)
	require.NoError(t, err)
	return id
}

func (e *testEnv) boxQuantities(t *testing.T) []int {
	t.Helper()

	boxes, err := e.boxes.ListBoxes(context.Background())
	require.NoError(t, err)
	quantities := make([]int, 0, len(boxes))
	for _, b := range boxes {
		quantities = append(quantities, b.Quantity)
	}
	return quantities
}

func TestStockDistributesAcrossBoxes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productID := env.registerProduct(t, "Widget", 10)
	_, err := env.pallets.Receive(ctx, productID, 30, "")
	require.NoError(t, err)

	require.NoError(t, env.engine.Stock(ctx, productID, 25))

	// 25 units fit into boxes of at most 10: two full, one partial.
	assert.Equal(t, []int{10, 10, 5}, env.boxQuantities(t))

	remaining, err := env.pallets.TotalAvailable(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
}

func TestStockFillsExistingBoxesFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productID := env.registerProduct(t, "Widget", 10)
	_, err := env.boxes.CreateBox(ctx, &productID, 4)
	require.NoError(t, err)
	_, err = env.pallets.Receive(ctx, productID, 10, "")
	require.NoError(t, err)

	require.NoError(t, env.engine.Stock(ctx, productID, 8))

	// The existing box is topped up before any new box is created.
	assert.Equal(t, []int{10, 2}, env.boxQuantities(t))
}

func TestStockInsufficientSupplyLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productID := env.registerProduct(t, "Widget", 10)
	_, err := env.pallets.Receive(ctx, productID, 25, "")
	require.NoError(t, err)

	err = env.engine.Stock(ctx, productID, 30)
	assert.ErrorIs(t, err, ErrInsufficientSupply)

	assert.Empty(t, env.boxQuantities(t))
	remaining, err := env.pallets.TotalAvailable(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 25, remaining)
}

func TestStockRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productID := env.registerProduct(t, "Widget", 10)

	err := env.engine.Stock(ctx, productID, 0)
	assert.ErrorIs(t, err, repository.ErrInvalidQuantity)

	err = env.engine.Stock(ctx, 999, 5)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestTransferPalletToBox(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productID := env.registerProduct(t, "Widget", 10)
	palletID, err := env.pallets.Receive(ctx, productID, 10, "")
	require.NoError(t, err)
	_, err = env.boxes.CreateBox(ctx, &productID, 0)
	require.NoError(t, err)
	boxes, err := env.boxes.ListBoxes(ctx)
	require.NoError(t, err)
	boxID := boxes[0].ID

	require.NoError(t, env.engine.TransferPalletToBox(ctx, palletID, boxID, 6, nil))

	assert.Equal(t, []int{6}, env.boxQuantities(t))
	remaining, err := env.pallets.TotalAvailable(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)

	// Draining the rest deletes the pallet row.
	require.NoError(t, env.engine.TransferPalletToBox(ctx, palletID, boxID, 4, nil))
	pallets, err := env.pallets.ListPallets(ctx)
	require.NoError(t, err)
	assert.Empty(t, pallets)
}

func TestTransferBindsUnboundBoxAndAssignsSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productID := env.registerProduct(t, "Widget", 10)
	_, err := env.slots.Generate(ctx, 1, 1, 2)
	require.NoError(t, err)
	palletID, err := env.pallets.Receive(ctx, productID, 5, "")
	require.NoError(t, err)
	_, err = env.boxes.CreateBox(ctx, nil, 0)
	require.NoError(t, err)
	boxes, err := env.boxes.ListBoxes(ctx)
	require.NoError(t, err)
	boxID := boxes[0].ID

	slotID := "A0101"
	require.NoError(t, env.engine.TransferPalletToBox(ctx, palletID, boxID, 5, &slotID))

	boxes, err = env.boxes.ListBoxes(ctx)
	require.NoError(t, err)
	require.NotNil(t, boxes[0].ProductID)
	assert.Equal(t, productID, *boxes[0].ProductID)
	assert.Equal(t, 5, boxes[0].Quantity)
	assert.Equal(t, 10, boxes[0].MaxCapacity)
	require.NotNil(t, boxes[0].SlotID)
	assert.Equal(t, "A0101", *boxes[0].SlotID)

	// The slot registry moved on to the next free slot.
	free, err := env.slots.FreeSlot(ctx)
	require.NoError(t, err)
	require.NotNil(t, free)
	assert.Equal(t, "A0102", free.ID)
}

func TestTransferAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productID := env.registerProduct(t, "Widget", 10)
	palletID, err := env.pallets.Receive(ctx, productID, 20, "")
	require.NoError(t, err)
	_, err = env.boxes.CreateBox(ctx, &productID, 8)
	require.NoError(t, err)
	boxes, err := env.boxes.ListBoxes(ctx)
	require.NoError(t, err)
	boxID := boxes[0].ID

	// Box capacity would be exceeded; neither side may change.
	err = env.engine.TransferPalletToBox(ctx, palletID, boxID, 5, nil)
	assert.ErrorIs(t, err, repository.ErrCapacityExceeded)

	assert.Equal(t, []int{8}, env.boxQuantities(t))
	remaining, err := env.pallets.TotalAvailable(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)

	// Asking for more than the pallet holds fails the same way.
	err = env.engine.TransferPalletToBox(ctx, palletID, boxID, 25, nil)
	assert.ErrorIs(t, err, ErrInsufficientSupply)
	remaining, err = env.pallets.TotalAvailable(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)
}

func TestTransferProductMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	widgetID := env.registerProduct(t, "Widget", 10)
	gadgetID := env.registerProduct(t, "Gadget", 5)
	palletID, err := env.pallets.Receive(ctx, widgetID, 5, "")
	require.NoError(t, err)
	_, err = env.boxes.CreateBox(ctx, &gadgetID, 1)
	require.NoError(t, err)
	boxes, err := env.boxes.ListBoxes(ctx)
	require.NoError(t, err)

	err = env.engine.TransferPalletToBox(ctx, palletID, boxes[0].ID, 2, nil)
	assert.ErrorIs(t, err, repository.ErrProductMismatch)

	assert.Equal(t, []int{1}, env.boxQuantities(t))
}
