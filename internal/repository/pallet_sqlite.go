package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"warehub-core-api/internal/model"
	"warehub-core-api/pkg/barcode"
)

// SQLitePalletRepository implements PalletRepository on the shared store.
type SQLitePalletRepository struct {
	s *Store
}

// NewSQLitePalletRepository creates a new pallet repository.
func NewSQLitePalletRepository(s *Store) *SQLitePalletRepository {
	return &SQLitePalletRepository{s: s}
}

// Receive registers an incoming pallet. Registering a pallet for an
// unknown product is rejected; this is the integrity gate that keeps
// supply rows consistent with the catalog.
func (r *SQLitePalletRepository) Receive(ctx context.Context, productID int64, quantity int, label string) (int64, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, err := getProduct(ctx, r.s.db, productID); err != nil {
		return 0, err
	}

	code := strings.TrimSpace(label)
	if code == "" {
		code = barcode.NewPallet()
	}

	res, err := r.s.db.ExecContext(ctx,
		`INSERT INTO external_pallets (barcode, product_id, quantity, created_at) VALUES (?, ?, ?, ?)`,
		code, productID, quantity, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to receive pallet: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read pallet id: %w", err)
	}
	return id, nil
}

// TotalAvailable sums quantities across all pallets of the product.
func (r *SQLitePalletRepository) TotalAvailable(ctx context.Context, productID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return totalAvailable(ctx, r.s.db, productID)
}

// Withdraw draws quantity oldest-first across matching pallets inside a
// transaction. Depleted pallets are deleted, the last pallet touched may
// be partially drained. The returned amount may be less than requested.
func (r *SQLitePalletRepository) Withdraw(ctx context.Context, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	withdrawn, err := withdrawPallets(ctx, tx, productID, quantity)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return withdrawn, nil
}

// ListPallets returns a read-only snapshot of all pallets, oldest first.
func (r *SQLitePalletRepository) ListPallets(ctx context.Context) ([]model.Pallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT id, barcode, product_id, quantity, created_at
		 FROM external_pallets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pallets: %w", err)
	}
	defer rows.Close()

	var pallets []model.Pallet
	for rows.Next() {
		var p model.Pallet
		if err := rows.Scan(&p.ID, &p.Barcode, &p.ProductID, &p.Quantity, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pallet: %w", err)
		}
		pallets = append(pallets, p)
	}
	return pallets, rows.Err()
}

// --- row-level helpers shared with the stock transaction ---

func getPallet(ctx context.Context, q querier, id int64) (*model.Pallet, error) {
	var p model.Pallet
	err := q.QueryRowContext(ctx,
		`SELECT id, barcode, product_id, quantity, created_at
		 FROM external_pallets WHERE id = ?`, id).
		Scan(&p.ID, &p.Barcode, &p.ProductID, &p.Quantity, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPalletNotFound
		}
		return nil, fmt.Errorf("failed to scan pallet: %w", err)
	}
	return &p, nil
}

func totalAvailable(ctx context.Context, q querier, productID int64) (int, error) {
	var total int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM external_pallets WHERE product_id = ?`,
		productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum pallet supply: %w", err)
	}
	return total, nil
}

// withdrawPallets drains up to quantity units oldest-first. Rows are read
// fully before any write so the single connection is never contended.
func withdrawPallets(ctx context.Context, q querier, productID int64, quantity int) (int, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, quantity FROM external_pallets
		 WHERE product_id = ? ORDER BY created_at, id`, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to query pallets: %w", err)
	}

	type palletRow struct {
		id  int64
		qty int
	}
	var pallets []palletRow
	for rows.Next() {
		var p palletRow
		if err := rows.Scan(&p.id, &p.qty); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan pallet: %w", err)
		}
		pallets = append(pallets, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	remaining := quantity
	for _, p := range pallets {
		if remaining == 0 {
			break
		}
		take := p.qty
		if take > remaining {
			take = remaining
		}
		if take == p.qty {
			if _, err := q.ExecContext(ctx, `DELETE FROM external_pallets WHERE id = ?`, p.id); err != nil {
				return 0, fmt.Errorf("failed to delete pallet: %w", err)
			}
		} else {
			if _, err := q.ExecContext(ctx,
				`UPDATE external_pallets SET quantity = quantity - ? WHERE id = ?`, take, p.id); err != nil {
				return 0, fmt.Errorf("failed to drain pallet: %w", err)
			}
		}
		remaining -= take
	}
	return quantity - remaining, nil
}

// drainPallet removes take units from a single pallet, deleting the row
// when it reaches zero.
func drainPallet(ctx context.Context, q querier, p *model.Pallet, take int) error {
	if take >= p.Quantity {
		if _, err := q.ExecContext(ctx, `DELETE FROM external_pallets WHERE id = ?`, p.ID); err != nil {
			return fmt.Errorf("failed to delete pallet: %w", err)
		}
		return nil
	}
	if _, err := q.ExecContext(ctx,
		`UPDATE external_pallets SET quantity = quantity - ? WHERE id = ?`, take, p.ID); err != nil {
		return fmt.Errorf("failed to drain pallet: %w", err)
	}
	return nil
}

// Ensure SQLitePalletRepository implements PalletRepository
var _ PalletRepository = (*SQLitePalletRepository)(nil)
