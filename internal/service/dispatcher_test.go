package service

import (
	"context"
	"testing"

	"warehub-core-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainProcessesEventsInOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.events.Enqueue(ctx, model.EventAddProductType,
		map[string]interface{}{"name": "Widget", "weight": "1.0", "max_per_box": 10})
	require.NoError(t, err)
	_, err = env.events.Enqueue(ctx, model.EventAddPallet,
		map[string]interface{}{"product_name": "Widget", "quantity": 30})
	require.NoError(t, err)
	_, err = env.events.Enqueue(ctx, model.EventAddProductsToStock,
		map[string]interface{}{"product_name": "Widget", "quantity": 25})
	require.NoError(t, err)

	attempted, err := env.dispatcher.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, attempted)

	// Each event saw the effects of the ones before it.
	product, err := env.catalog.LookupByName(ctx, "Widget")
	require.NoError(t, err)
	assert.Equal(t, 10, product.MaxPerBox)
	assert.Equal(t, []int{10, 10, 5}, env.boxQuantities(t))

	remaining, err := env.pallets.TotalAvailable(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	events, err := env.events.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, model.EventProcessed, ev.Status)
	}
}

func TestDrainFailureDoesNotStopBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerProduct(t, "Widget", 10)

	// Re-registering the same name fails, the pallet event still runs.
	_, err := env.events.Enqueue(ctx, model.EventAddProductType,
		map[string]interface{}{"name": "Widget", "weight": "2.0", "max_per_box": 5})
	require.NoError(t, err)
	_, err = env.events.Enqueue(ctx, model.EventAddPallet,
		map[string]interface{}{"product_name": "Widget", "quantity": 40})
	require.NoError(t, err)

	attempted, err := env.dispatcher.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, attempted)

	events, err := env.events.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventFailed, events[0].Status)
	require.NotNil(t, events[0].ErrorMessage)
	assert.Contains(t, *events[0].ErrorMessage, "already registered")
	assert.Equal(t, model.EventProcessed, events[1].Status)

	// The failed event changed nothing in the catalog.
	product, err := env.catalog.LookupByName(ctx, "Widget")
	require.NoError(t, err)
	assert.Equal(t, 10, product.MaxPerBox)

	pallets, err := env.pallets.ListPallets(ctx)
	require.NoError(t, err)
	require.Len(t, pallets, 1)
	assert.Equal(t, 40, pallets[0].Quantity)
}

func TestDrainInsufficientSupplyFailsEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productID := env.registerProduct(t, "Widget", 10)
	_, err := env.pallets.Receive(ctx, productID, 5, "")
	require.NoError(t, err)

	_, err = env.events.Enqueue(ctx, model.EventAddProductsToStock,
		map[string]interface{}{"product_id": productID, "quantity": 20})
	require.NoError(t, err)

	_, err = env.dispatcher.Drain(ctx)
	require.NoError(t, err)

	events, err := env.events.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventFailed, events[0].Status)

	// FAILED is terminal; supply and boxes are untouched.
	remaining, err := env.pallets.TotalAvailable(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
	assert.Empty(t, env.boxQuantities(t))
}

func TestDrainReplayIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.events.Enqueue(ctx, model.EventAddProductType,
		map[string]interface{}{"name": "Widget", "weight": "1.0", "max_per_box": 10})
	require.NoError(t, err)

	attempted, err := env.dispatcher.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, attempted)

	attempted, err = env.dispatcher.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, attempted)

	count, err := env.catalog.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestHandleUnknownTypeIsSwallowed(t *testing.T) {
	env := newTestEnv(t)

	// Rows written out-of-band may carry tags this build does not know.
	err := env.dispatcher.handle(context.Background(), model.Event{
		ID:   42,
		Type: "REBALANCE_AISLES",
	})
	assert.NoError(t, err)
}

func TestHandleInvalidPayload(t *testing.T) {
	env := newTestEnv(t)

	err := env.dispatcher.handle(context.Background(), model.Event{
		ID:      7,
		Type:    model.EventAddProductType,
		Payload: []byte(`{not json`),
	})
	assert.Error(t, err)
}

func TestDispatcherStartStop(t *testing.T) {
	env := newTestEnv(t)

	env.dispatcher.Start()
	env.dispatcher.Start() // second start is a no-op
	env.dispatcher.Stop()
	env.dispatcher.Stop() // stop is idempotent
}
