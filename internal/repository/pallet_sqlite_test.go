package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceivePallet(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLitePalletRepository(store)
	ctx := context.Background()

	productID := registerProduct(t, store, "Widget", 10)

	id, err := repo.Receive(ctx, productID, 50, "")
	require.NoError(t, err)
	require.NotZero(t, id)

	pallets, err := repo.ListPallets(ctx)
	require.NoError(t, err)
	require.Len(t, pallets, 1)
	assert.True(t, strings.HasPrefix(pallets[0].Barcode, "PAL-"))
	assert.Equal(t, productID, pallets[0].ProductID)
	assert.Equal(t, 50, pallets[0].Quantity)

	id, err = repo.Receive(ctx, productID, 20, "DOCK-7")
	require.NoError(t, err)

	pallets, err = repo.ListPallets(ctx)
	require.NoError(t, err)
	require.Len(t, pallets, 2)
	assert.Equal(t, "DOCK-7", pallets[1].Barcode)
}

func TestReceivePalletRejectsBadInput(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLitePalletRepository(store)
	ctx := context.Background()

	productID := registerProduct(t, store, "Widget", 10)

	_, err := repo.Receive(ctx, productID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = repo.Receive(ctx, productID, -5, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = repo.Receive(ctx, 999, 10, "")
	assert.ErrorIs(t, err, ErrProductNotFound)

	pallets, err := repo.ListPallets(ctx)
	require.NoError(t, err)
	assert.Empty(t, pallets)
}

func TestWithdrawOldestFirst(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLitePalletRepository(store)
	ctx := context.Background()

	productID := registerProduct(t, store, "Widget", 10)

	_, err := repo.Receive(ctx, productID, 10, "first")
	require.NoError(t, err)
	_, err = repo.Receive(ctx, productID, 10, "second")
	require.NoError(t, err)
	_, err = repo.Receive(ctx, productID, 10, "third")
	require.NoError(t, err)

	withdrawn, err := repo.Withdraw(ctx, productID, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, withdrawn)

	// The oldest pallet is gone, the second is half drained.
	pallets, err := repo.ListPallets(ctx)
	require.NoError(t, err)
	require.Len(t, pallets, 2)
	assert.Equal(t, "second", pallets[0].Barcode)
	assert.Equal(t, 5, pallets[0].Quantity)
	assert.Equal(t, "third", pallets[1].Barcode)
	assert.Equal(t, 10, pallets[1].Quantity)

	total, err := repo.TotalAvailable(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
}

func TestWithdrawPartialSupply(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLitePalletRepository(store)
	ctx := context.Background()

	productID := registerProduct(t, store, "Widget", 10)

	_, err := repo.Receive(ctx, productID, 8, "")
	require.NoError(t, err)

	// Short supply is reported, not treated as an error.
	withdrawn, err := repo.Withdraw(ctx, productID, 20)
	require.NoError(t, err)
	assert.Equal(t, 8, withdrawn)

	total, err := repo.TotalAvailable(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	pallets, err := repo.ListPallets(ctx)
	require.NoError(t, err)
	assert.Empty(t, pallets)
}

func TestWithdrawScopedToProduct(t *testing.T) {
	store := newTestStore(t)
	repo := NewSQLitePalletRepository(store)
	ctx := context.Background()

	widgetID := registerProduct(t, store, "Widget", 10)
	gadgetID := registerProduct(t, store, "Gadget", 5)

	_, err := repo.Receive(ctx, widgetID, 10, "")
	require.NoError(t, err)
	_, err = repo.Receive(ctx, gadgetID, 10, "")
	require.NoError(t, err)

	withdrawn, err := repo.Withdraw(ctx, widgetID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, withdrawn)

	total, err := repo.TotalAvailable(ctx, gadgetID)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}
