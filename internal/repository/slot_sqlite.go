package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"warehub-core-api/internal/model"
)

// SQLiteSlotRepository implements SlotRepository on the shared store.
type SQLiteSlotRepository struct {
	s *Store
}

// NewSQLiteSlotRepository creates a new slot repository.
func NewSQLiteSlotRepository(s *Store) *SQLiteSlotRepository {
	return &SQLiteSlotRepository{s: s}
}

// Generate creates the full slot grid, e.g. "A0105" for aisle A,
// column 1, slot 5. Skips generation when slots already exist.
func (r *SQLiteSlotRepository) Generate(ctx context.Context, aisles, columns, slotsPerColumn int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	if count > 0 {
		log.Printf("[SlotRepository] %d slots already exist, skipping generation", count)
		return 0, nil
	}

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := insertSlotGrid(ctx, tx, aisles, columns, slotsPerColumn)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("[SlotRepository] Generated %d slots", created)
	return created, nil
}

// FreeSlot returns the first EMPTY slot, or nil when the warehouse is full.
func (r *SQLiteSlotRepository) FreeSlot(ctx context.Context) (*model.Slot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanFreeSlot(r.s.db.QueryRowContext(ctx,
		`SELECT id, aisle, col, slot, status, box_barcode
		 FROM slots WHERE status = ? ORDER BY id LIMIT 1`, model.SlotEmpty))
}

// AssignBox records a box occupying a slot.
func (r *SQLiteSlotRepository) AssignBox(ctx context.Context, slotID, boxBarcode string, status model.SlotStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, err := r.s.db.ExecContext(ctx,
		`UPDATE slots SET status = ?, box_barcode = ? WHERE id = ?`,
		status, boxBarcode, slotID)
	if err != nil {
		return fmt.Errorf("failed to assign slot: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// Close is a no-op; the shared store owns the connection.
func (r *SQLiteSlotRepository) Close() error { return nil }

// insertSlotGrid writes the aisle/column/slot grid through any querier
// so both slot backends share the layout.
func insertSlotGrid(ctx context.Context, q querier, aisles, columns, slotsPerColumn int) (int, error) {
	created := 0
	for a := 0; a < aisles; a++ {
		aisle := string(rune('A' + a))
		for col := 1; col <= columns; col++ {
			for s := 1; s <= slotsPerColumn; s++ {
				slotID := fmt.Sprintf("%s%02d%02d", aisle, col, s)
				if _, err := q.ExecContext(ctx,
					`INSERT INTO slots (id, aisle, col, slot, status) VALUES (?, ?, ?, ?, ?)`,
					slotID, aisle, col, s, model.SlotEmpty); err != nil {
					return created, fmt.Errorf("failed to insert slot %s: %w", slotID, err)
				}
				created++
			}
		}
	}
	return created, nil
}

func scanFreeSlot(row *sql.Row) (*model.Slot, error) {
	var slot model.Slot
	var boxBarcode sql.NullString
	err := row.Scan(&slot.ID, &slot.Aisle, &slot.Col, &slot.Slot, &slot.Status, &boxBarcode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan slot: %w", err)
	}
	if boxBarcode.Valid {
		slot.BoxBarcode = &boxBarcode.String
	}
	return &slot, nil
}

// Ensure SQLiteSlotRepository implements SlotRepository
var _ SlotRepository = (*SQLiteSlotRepository)(nil)
