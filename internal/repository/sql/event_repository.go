package sql

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

// EventRepository stores lifecycle events that could not be published.
type EventRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *EventRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// Create inserts a new event into the outbox. The payload is sent as text so the
// JSONB column accepts it from either driver.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	event.InitMeta()

	query := `INSERT INTO events (id, topic, event_type, event_data, status, created_at, processed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, upstream("prepare insert statement", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, event.ID, event.Topic, event.EventType, string(event.EventData), event.Status, event.CreatedAt, event.ProcessedAt)
	if err != nil {
		return nil, upstream("insert event", err)
	}

	return event, nil
}

// ListPending retrieves pending events, oldest first.
func (r *EventRepository) ListPending(ctx context.Context, limit int) ([]*model.Event, error) {
	query := `SELECT id, topic, event_type, event_data, status, created_at, processed_at
	          FROM events
	          WHERE status = $1
	          ORDER BY created_at ASC
	          LIMIT $2`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, upstream("prepare select statement", err)
	}
	defer stmt.Close()

	if limit <= 0 {
		limit = repository.DefaultPaginationLimit
	}

	rows, err := stmt.QueryContext(ctx, model.EventStatusPending, limit)
	if err != nil {
		return nil, upstream("query events", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		var event model.Event
		var data []byte
		var processedAt sql.NullTime
		err := rows.Scan(&event.ID, &event.Topic, &event.EventType, &data, &event.Status, &event.CreatedAt, &processedAt)
		if err != nil {
			return nil, upstream("scan event", err)
		}
		event.EventData = data
		if processedAt.Valid {
			event.ProcessedAt = &processedAt.Time
		}
		events = append(events, &event)
	}

	if err = rows.Err(); err != nil {
		return nil, upstream("iterate events", err)
	}

	return events, nil
}

// UpdateStatus updates the status and processed_at time of an event
func (r *EventRepository) UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error {
	query := `UPDATE events SET status = $1, processed_at = CURRENT_TIMESTAMP WHERE id = $2`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return upstream("prepare update statement", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, status, eventID)
	if err != nil {
		return upstream("update event status", err)
	}

	return nil
}
