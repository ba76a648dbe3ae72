package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// registerProduct is a test helper that seeds one product and returns its id.
func registerProduct(t *testing.T, store *Store, name string, maxPerBox int) int64 {
	t.Helper()

	id, err := NewSQLiteCatalogRepository(store).Register(
		context.Background(), name, decimal.RequireFromString("1.0"), maxPerBox)
	require.NoError(t, err)
	return id
}

func TestCreateBoxUnbound(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLiteBoxRepository(store)
	ctx := context.Background()

	code, err := repo.CreateBox(ctx, nil, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "BOX-"))

	boxes, err := repo.ListBoxes(ctx)
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Nil(t, boxes[0].ProductID)
	assert.Equal(t, 0, boxes[0].Quantity)
	assert.Equal(t, 0, boxes[0].MaxCapacity)

	// An unbound box has no capacity, so it cannot start with units.
	_, err = repo.CreateBox(ctx, nil, 5)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestCreateBoxBound(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLiteBoxRepository(store)
	ctx := context.Background()

	productID := registerProduct(t, store, "Widget", 10)

	_, err := repo.CreateBox(ctx, &productID, 7)
	require.NoError(t, err)

	boxes, err := repo.ListBoxes(ctx)
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	require.NotNil(t, boxes[0].ProductID)
	assert.Equal(t, productID, *boxes[0].ProductID)
	assert.Equal(t, 7, boxes[0].Quantity)
	assert.Equal(t, 10, boxes[0].MaxCapacity)
	assert.Equal(t, 3, boxes[0].FreeSpace())

	_, err = repo.CreateBox(ctx, &productID, 11)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	unknown := int64(999)
	_, err = repo.CreateBox(ctx, &unknown, 0)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddToBoxBindsUnbound(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLiteBoxRepository(store)
	ctx := context.Background()

	productID := registerProduct(t, store, "Widget", 10)

	_, err := repo.CreateBox(ctx, nil, 0)
	require.NoError(t, err)

	boxes, err := repo.ListBoxes(ctx)
	require.NoError(t, err)
	boxID := boxes[0].ID

	// Adding without a product cannot bind the box.
	err = repo.AddToBox(ctx, boxID, 3, nil)
	assert.ErrorIs(t, err, ErrProductMismatch)

	require.NoError(t, repo.AddToBox(ctx, boxID, 3, &productID))

	boxes, err = repo.ListBoxes(ctx)
	require.NoError(t, err)
	require.NotNil(t, boxes[0].ProductID)
	assert.Equal(t, productID, *boxes[0].ProductID)
	assert.Equal(t, 3, boxes[0].Quantity)
	assert.Equal(t, 10, boxes[0].MaxCapacity)
}

func TestAddToBoxCapacityAndMismatch(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLiteBoxRepository(store)
	ctx := context.Background()

	widgetID := registerProduct(t, store, "Widget", 10)
	gadgetID := registerProduct(t, store, "Gadget", 5)

	_, err := repo.CreateBox(ctx, &widgetID, 8)
	require.NoError(t, err)
	boxes, err := repo.ListBoxes(ctx)
	require.NoError(t, err)
	boxID := boxes[0].ID

	err = repo.AddToBox(ctx, boxID, 3, &widgetID)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	err = repo.AddToBox(ctx, boxID, 1, &gadgetID)
	assert.ErrorIs(t, err, ErrProductMismatch)

	// The failed attempts must not have changed the box.
	boxes, err = repo.ListBoxes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, boxes[0].Quantity)

	require.NoError(t, repo.AddToBox(ctx, boxID, 2, &widgetID))
	boxes, err = repo.ListBoxes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, boxes[0].Quantity)
	assert.Equal(t, 0, boxes[0].FreeSpace())
}

func TestDeleteBox(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLiteBoxRepository(store)
	ctx := context.Background()

	productID := registerProduct(t, store, "Widget", 10)

	_, err := repo.CreateBox(ctx, nil, 0)
	require.NoError(t, err)
	_, err = repo.CreateBox(ctx, &productID, 4)
	require.NoError(t, err)

	boxes, err := repo.ListBoxes(ctx)
	require.NoError(t, err)
	require.Len(t, boxes, 2)

	deleted, err := repo.DeleteBox(ctx, boxes[0].ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// A bound box is never deleted, even implicitly.
	deleted, err = repo.DeleteBox(ctx, boxes[1].ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	boxes, err = repo.ListBoxes(ctx)
	require.NoError(t, err)
	assert.Len(t, boxes, 1)
}

func TestFindBoxWithSpace(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLiteBoxRepository(store)
	ctx := context.Background()

	productID := registerProduct(t, store, "Widget", 10)

	_, err := repo.FindBoxWithSpace(ctx, productID)
	require.NoError(t, err)

	_, err = repo.CreateBox(ctx, &productID, 10) // full
	require.NoError(t, err)
	_, err = repo.CreateBox(ctx, &productID, 4)
	require.NoError(t, err)
	_, err = repo.CreateBox(ctx, &productID, 2)
	require.NoError(t, err)

	box, err := repo.FindBoxWithSpace(ctx, productID)
	require.NoError(t, err)
	require.NotNil(t, box)
	// The full box is skipped; the lowest id with space wins.
	assert.Equal(t, 4, box.Quantity)

	require.NoError(t, repo.AddToBox(ctx, box.ID, 6, &productID))
	box, err = repo.FindBoxWithSpace(ctx, productID)
	require.NoError(t, err)
	require.NotNil(t, box)
	assert.Equal(t, 2, box.Quantity)
}

func TestStockStatus(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLiteBoxRepository(store)
	ctx := context.Background()

	widgetID := registerProduct(t, store, "Widget", 10)
	gadgetID := registerProduct(t, store, "Gadget", 5)

	_, err := repo.CreateBox(ctx, &widgetID, 10)
	require.NoError(t, err)
	_, err = repo.CreateBox(ctx, &widgetID, 3)
	require.NoError(t, err)
	_, err = repo.CreateBox(ctx, nil, 0)
	require.NoError(t, err)

	status, err := repo.StockStatus(ctx)
	require.NoError(t, err)
	require.Len(t, status, 2)

	// Ordered by name; products with no boxes report zero.
	assert.Equal(t, "Gadget", status[0].Name)
	assert.Equal(t, gadgetID, status[0].ProductID)
	assert.Equal(t, 0, status[0].TotalQuantity)
	assert.Equal(t, "Widget", status[1].Name)
	assert.Equal(t, 13, status[1].TotalQuantity)

	empty, err := repo.CountEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, empty)
}
