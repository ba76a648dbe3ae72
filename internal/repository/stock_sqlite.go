package repository

import (
	"context"
	"fmt"

	"warehub-core-api/internal/model"
)

// SQLiteStockRepository provides the single transaction scope the
// allocation engine runs in. Pallet withdrawal and box fills commit or
// roll back as one unit, so a pallet is never debited without the
// matching box credit.
type SQLiteStockRepository struct {
	s *Store
}

// NewSQLiteStockRepository creates a new stock repository.
func NewSQLiteStockRepository(s *Store) *SQLiteStockRepository {
	return &SQLiteStockRepository{s: s}
}

// InTx runs fn inside one transaction under the store write lock.
func (r *SQLiteStockRepository) InTx(ctx context.Context, fn func(tx StockTx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&stockTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// stockTx delegates to the shared row-level helpers with the
// transaction as querier.
type stockTx struct {
	q querier
}

func (t *stockTx) Product(ctx context.Context, id int64) (*model.Product, error) {
	return getProduct(ctx, t.q, id)
}

func (t *stockTx) TotalAvailable(ctx context.Context, productID int64) (int, error) {
	return totalAvailable(ctx, t.q, productID)
}

func (t *stockTx) Withdraw(ctx context.Context, productID int64, quantity int) (int, error) {
	return withdrawPallets(ctx, t.q, productID, quantity)
}

func (t *stockTx) FindBoxWithSpace(ctx context.Context, productID int64) (*model.Box, error) {
	return findBoxWithSpace(ctx, t.q, productID)
}

func (t *stockTx) CreateBox(ctx context.Context, product *model.Product, quantity int) (string, error) {
	return createBox(ctx, t.q, product, quantity)
}

func (t *stockTx) Box(ctx context.Context, id int64) (*model.Box, error) {
	return getBox(ctx, t.q, id)
}

func (t *stockTx) AddToBox(ctx context.Context, box *model.Box, delta int, bind *model.Product) error {
	return applyBoxDelta(ctx, t.q, box, delta, bind)
}

func (t *stockTx) Pallet(ctx context.Context, id int64) (*model.Pallet, error) {
	return getPallet(ctx, t.q, id)
}

func (t *stockTx) DrainPallet(ctx context.Context, pallet *model.Pallet, take int) error {
	return drainPallet(ctx, t.q, pallet, take)
}

func (t *stockTx) SetBoxSlot(ctx context.Context, boxID int64, slotID string) error {
	return setBoxSlot(ctx, t.q, boxID, slotID)
}

// Ensure SQLiteStockRepository implements StockRepository
var _ StockRepository = (*SQLiteStockRepository)(nil)
