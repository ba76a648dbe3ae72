package repository

import (
	"context"
	"database/sql"
	"fmt"

	"warehub-core-api/internal/model"
	"warehub-core-api/pkg/barcode"
)

// SQLiteBoxRepository implements BoxRepository on the shared store.
type SQLiteBoxRepository struct {
	s *Store
}

// NewSQLiteBoxRepository creates a new box repository.
func NewSQLiteBoxRepository(s *Store) *SQLiteBoxRepository {
	return &SQLiteBoxRepository{s: s}
}

// CreateBox creates a box with a generated barcode. When productID is
// given, max_capacity is copied from the product's max_per_box and the
// initial quantity must fit.
func (r *SQLiteBoxRepository) CreateBox(ctx context.Context, productID *int64, initialQuantity int) (string, error) {
	if initialQuantity < 0 {
		return "", ErrInvalidQuantity
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var product *model.Product
	if productID != nil {
		var err error
		product, err = getProduct(ctx, r.s.db, *productID)
		if err != nil {
			return "", err
		}
	}
	return createBox(ctx, r.s.db, product, initialQuantity)
}

// FindBoxWithSpace returns the first box bound to the product with free
// space, ascending by id for deterministic FIFO-like packing.
func (r *SQLiteBoxRepository) FindBoxWithSpace(ctx context.Context, productID int64) (*model.Box, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return findBoxWithSpace(ctx, r.s.db, productID)
}

// AddToBox adds delta units to a box, binding it first when unbound.
func (r *SQLiteBoxRepository) AddToBox(ctx context.Context, boxID int64, delta int, productID *int64) error {
	if delta <= 0 {
		return ErrInvalidQuantity
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	box, err := getBox(ctx, tx, boxID)
	if err != nil {
		return err
	}

	var bind *model.Product
	if productID != nil {
		bind, err = getProduct(ctx, tx, *productID)
		if err != nil {
			return err
		}
	}

	if err := applyBoxDelta(ctx, tx, box, delta, bind); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteBox deletes a box only when it is empty and unbound. A box that
// still holds units or a product binding is left untouched and false is
// returned; this is a signal, not an error.
func (r *SQLiteBoxRepository) DeleteBox(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, err := r.s.db.ExecContext(ctx,
		`DELETE FROM boxes WHERE id = ? AND quantity = 0 AND product_id IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete box: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListBoxes returns a read-only snapshot of all boxes.
func (r *SQLiteBoxRepository) ListBoxes(ctx context.Context) ([]model.Box, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT id, barcode, product_id, quantity, max_capacity, slot_id
		 FROM boxes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list boxes: %w", err)
	}
	defer rows.Close()

	var boxes []model.Box
	for rows.Next() {
		box, err := scanBoxRow(rows)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, *box)
	}
	return boxes, rows.Err()
}

// CountEmpty returns the number of boxes holding zero units.
func (r *SQLiteBoxRepository) CountEmpty(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM boxes WHERE quantity = 0`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count empty boxes: %w", err)
	}
	return count, nil
}

// StockStatus returns per-product totals across all boxes.
func (r *SQLiteBoxRepository) StockStatus(ctx context.Context) ([]model.StockStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT p.id, p.name, COALESCE(SUM(b.quantity), 0)
		 FROM products p
		 LEFT JOIN boxes b ON b.product_id = p.id
		 GROUP BY p.id, p.name
		 ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock status: %w", err)
	}
	defer rows.Close()

	var status []model.StockStatus
	for rows.Next() {
		var st model.StockStatus
		if err := rows.Scan(&st.ProductID, &st.Name, &st.TotalQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock status: %w", err)
		}
		status = append(status, st)
	}
	return status, rows.Err()
}

// --- row-level helpers shared with the stock transaction ---

func getBox(ctx context.Context, q querier, id int64) (*model.Box, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, barcode, product_id, quantity, max_capacity, slot_id
		 FROM boxes WHERE id = ?`, id)
	box, err := scanBox(row)
	if err == sql.ErrNoRows {
		return nil, ErrBoxNotFound
	}
	return box, err
}

func findBoxWithSpace(ctx context.Context, q querier, productID int64) (*model.Box, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, barcode, product_id, quantity, max_capacity, slot_id
		 FROM boxes WHERE product_id = ? AND quantity < max_capacity
		 ORDER BY id LIMIT 1`, productID)
	box, err := scanBox(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return box, err
}

// createBox inserts a new box row. Capacity is copied from the product
// at bind time; unbound boxes carry capacity 0 and must start empty.
func createBox(ctx context.Context, q querier, product *model.Product, quantity int) (string, error) {
	code := barcode.NewBox()

	if product == nil {
		if quantity > 0 {
			return "", ErrCapacityExceeded
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO boxes (barcode, quantity, max_capacity) VALUES (?, 0, 0)`, code); err != nil {
			return "", fmt.Errorf("failed to create box: %w", err)
		}
		return code, nil
	}

	if quantity > product.MaxPerBox {
		return "", ErrCapacityExceeded
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO boxes (barcode, product_id, quantity, max_capacity) VALUES (?, ?, ?, ?)`,
		code, product.ID, quantity, product.MaxPerBox); err != nil {
		return "", fmt.Errorf("failed to create box: %w", err)
	}
	return code, nil
}

// applyBoxDelta adds delta units to box, binding it to bind when the box
// has no product yet. The caller supplies the loaded box row.
func applyBoxDelta(ctx context.Context, q querier, box *model.Box, delta int, bind *model.Product) error {
	productID := box.ProductID
	capacity := box.MaxCapacity

	switch {
	case box.ProductID == nil:
		if bind == nil {
			return ErrProductMismatch
		}
		productID = &bind.ID
		capacity = bind.MaxPerBox
	case bind != nil && *box.ProductID != bind.ID:
		return ErrProductMismatch
	}

	if box.Quantity+delta > capacity {
		return ErrCapacityExceeded
	}

	res, err := q.ExecContext(ctx,
		`UPDATE boxes SET product_id = ?, quantity = quantity + ?, max_capacity = ? WHERE id = ?`,
		*productID, delta, capacity, box.ID)
	if err != nil {
		return fmt.Errorf("failed to update box: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrBoxNotFound
	}
	return nil
}

func setBoxSlot(ctx context.Context, q querier, boxID int64, slotID string) error {
	res, err := q.ExecContext(ctx, `UPDATE boxes SET slot_id = ? WHERE id = ?`, slotID, boxID)
	if err != nil {
		return fmt.Errorf("failed to set box slot: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrBoxNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBox(row *sql.Row) (*model.Box, error) {
	box, err := scanBoxFrom(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	return box, err
}

func scanBoxRow(rows *sql.Rows) (*model.Box, error) {
	return scanBoxFrom(rows)
}

func scanBoxFrom(s rowScanner) (*model.Box, error) {
	var box model.Box
	var productID sql.NullInt64
	var slotID sql.NullString
	if err := s.Scan(&box.ID, &box.Barcode, &productID, &box.Quantity, &box.MaxCapacity, &slotID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan box: %w", err)
	}
	if productID.Valid {
		box.ProductID = &productID.Int64
	}
	if slotID.Valid {
		box.SlotID = &slotID.String
	}
	return &box, nil
}

// Ensure SQLiteBoxRepository implements BoxRepository
var _ BoxRepository = (*SQLiteBoxRepository)(nil)
