package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// Store owns the SQLite database shared by the warehouse repositories.
// A single connection plus one RWMutex preserves the single-writer
// model: every mutation, direct or dispatched, serializes here.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the warehouse database at dbPath.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_time_format=sqlite&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[Store] Initialized with database: %s", dbPath)
	return &Store{db: db}, nil
}

// createTables creates the warehouse schema.
func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		weight TEXT NOT NULL,
		max_per_box INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS boxes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		barcode TEXT NOT NULL UNIQUE,
		product_id INTEGER,
		quantity INTEGER NOT NULL DEFAULT 0,
		max_capacity INTEGER NOT NULL DEFAULT 0,
		slot_id TEXT,
		FOREIGN KEY (product_id) REFERENCES products (id)
	);
	CREATE TABLE IF NOT EXISTS external_pallets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		barcode TEXT NOT NULL UNIQUE,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (product_id) REFERENCES products (id)
	);
	CREATE TABLE IF NOT EXISTS slots (
		id TEXT PRIMARY KEY,
		aisle TEXT NOT NULL,
		col INTEGER NOT NULL,
		slot INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'EMPTY',
		box_barcode TEXT,
		FOREIGN KEY (box_barcode) REFERENCES boxes (barcode)
	);
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		payload TEXT,
		created_at DATETIME NOT NULL,
		processed INTEGER NOT NULL DEFAULT 0,
		processed_at DATETIME,
		error_message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_boxes_product ON boxes(product_id);
	CREATE INDEX IF NOT EXISTS idx_pallets_product ON external_pallets(product_id);
	CREATE INDEX IF NOT EXISTS idx_events_processed ON events(processed);
	`
	_, err := db.Exec(query)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx so row-level helpers
// can run standalone or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ping verifies the database connection for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
