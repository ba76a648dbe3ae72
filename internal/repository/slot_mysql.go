package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"warehub-core-api/internal/model"
)

// MySQLSlotRepository implements SlotRepository against a MySQL server.
// The slot registry is an external collaborator with its own lifecycle,
// so some deployments keep it in the shared facility database instead of
// the local SQLite file.
type MySQLSlotRepository struct {
	db *sql.DB
}

// NewMySQLSlotRepository creates a MySQL slot repository on an already
// opened connection and bootstraps the slots table.
func NewMySQLSlotRepository(db *sql.DB) (*MySQLSlotRepository, error) {
	query := `
	CREATE TABLE IF NOT EXISTS slots (
		id VARCHAR(16) PRIMARY KEY,
		aisle VARCHAR(4) NOT NULL,
		col INT NOT NULL,
		slot INT NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'EMPTY',
		box_barcode VARCHAR(64)
	)`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}

	log.Printf("[MySQLSlotRepository] Initialized")
	return &MySQLSlotRepository{db: db}, nil
}

// Generate creates the full slot grid, skipping when slots already exist.
func (r *MySQLSlotRepository) Generate(ctx context.Context, aisles, columns, slotsPerColumn int) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	if count > 0 {
		log.Printf("[MySQLSlotRepository] %d slots already exist, skipping generation", count)
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
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

	log.Printf("[MySQLSlotRepository] Generated %d slots", created)
	return created, nil
}

// FreeSlot returns the first EMPTY slot, or nil when the warehouse is full.
func (r *MySQLSlotRepository) FreeSlot(ctx context.Context) (*model.Slot, error) {
	return scanFreeSlot(r.db.QueryRowContext(ctx,
		`SELECT id, aisle, col, slot, status, box_barcode
		 FROM slots WHERE status = ? ORDER BY id LIMIT 1`, model.SlotEmpty))
}

// AssignBox records a box occupying a slot.
func (r *MySQLSlotRepository) AssignBox(ctx context.Context, slotID, boxBarcode string, status model.SlotStatus) error {
	res, err := r.db.ExecContext(ctx,
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

// Close closes the MySQL connection.
func (r *MySQLSlotRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLSlotRepository implements SlotRepository
var _ SlotRepository = (*MySQLSlotRepository)(nil)
