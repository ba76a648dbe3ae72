package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"warehub-core-api/internal/model"
)

// Event status values in the processed column.
const (
	eventPending   = 0
	eventProcessed = 1
	eventFailed    = -1
)

// SQLiteEventRepository implements EventRepository on the shared store.
// Events are append-only: rows transition PENDING->PROCESSED or
// PENDING->FAILED exactly once and are never deleted.
type SQLiteEventRepository struct {
	s *Store
}

// NewSQLiteEventRepository creates a new event repository.
func NewSQLiteEventRepository(s *Store) *SQLiteEventRepository {
	return &SQLiteEventRepository{s: s}
}

// Enqueue appends a PENDING event with a server-assigned timestamp.
func (r *SQLiteEventRepository) Enqueue(ctx context.Context, eventType string, payload interface{}) (int64, error) {
	if !model.KnownEventType(eventType) {
		return 0, ErrInvalidEventType
	}

	var data interface{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("failed to encode payload: %w", err)
		}
		data = string(raw)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, err := r.s.db.ExecContext(ctx,
		`INSERT INTO events (event_type, payload, created_at, processed) VALUES (?, ?, ?, ?)`,
		eventType, data, time.Now().UTC(), eventPending)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read event id: %w", err)
	}
	return id, nil
}

// Pending returns PENDING events in arrival order. Selecting on the
// pending status only is what makes replaying a drain a no-op.
func (r *SQLiteEventRepository) Pending(ctx context.Context) ([]model.Event, error) {
	return r.query(ctx,
		`SELECT id, event_type, payload, created_at, processed, processed_at, error_message
		 FROM events WHERE processed = 0 ORDER BY created_at, id`)
}

// List returns all events in arrival order.
func (r *SQLiteEventRepository) List(ctx context.Context) ([]model.Event, error) {
	return r.query(ctx,
		`SELECT id, event_type, payload, created_at, processed, processed_at, error_message
		 FROM events ORDER BY created_at, id`)
}

func (r *SQLiteEventRepository) query(ctx context.Context, query string) ([]model.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var payload sql.NullString
		var processed int
		var processedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(&ev.ID, &ev.Type, &payload, &ev.CreatedAt, &processed, &processedAt, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if payload.Valid {
			ev.Payload = json.RawMessage(payload.String)
		}
		switch processed {
		case eventProcessed:
			ev.Status = model.EventProcessed
		case eventFailed:
			ev.Status = model.EventFailed
		default:
			ev.Status = model.EventPending
		}
		if processedAt.Valid {
			t := processedAt.Time
			ev.ProcessedAt = &t
		}
		if errMsg.Valid {
			m := errMsg.String
			ev.ErrorMessage = &m
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MarkProcessed transitions an event PENDING->PROCESSED.
func (r *SQLiteEventRepository) MarkProcessed(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx,
		`UPDATE events SET processed = ?, processed_at = ? WHERE id = ?`,
		eventProcessed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

// MarkFailed transitions an event PENDING->FAILED and records the error
// text for the audit trail.
func (r *SQLiteEventRepository) MarkFailed(ctx context.Context, id int64, message string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx,
		`UPDATE events SET processed = ?, processed_at = ?, error_message = ? WHERE id = ?`,
		eventFailed, time.Now().UTC(), message, id)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}

// Ensure SQLiteEventRepository implements EventRepository
var _ EventRepository = (*SQLiteEventRepository)(nil)
