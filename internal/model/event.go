package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventAction names a catalog state change published to downstream consumers.
type EventAction string

const (
	ActionProductCreated EventAction = "product_created"
	ActionProductDeleted EventAction = "product_deleted"
	ActionImageUploaded  EventAction = "image_uploaded"
)

// ProductImageFilename is the object name every product image is stored under.
const ProductImageFilename = "product.png"

// LifecycleEvent is the broker payload describing a catalog state change.
type LifecycleEvent struct {
	Action   EventAction      `json:"action"`
	ID       int64            `json:"id,omitempty"`
	Name     string           `json:"name,omitempty"`
	UPC      string           `json:"upc,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Category string           `json:"category,omitempty"`

	ProductID int64  `json:"product_id,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// ProductCreatedEvent describes the creation of p.
func ProductCreatedEvent(p *Product) LifecycleEvent {
	return productEvent(ActionProductCreated, p)
}

// ProductDeletedEvent describes the deletion of p.
func ProductDeletedEvent(p *Product) LifecycleEvent {
	return productEvent(ActionProductDeleted, p)
}

// ImageUploadedEvent describes a stored product image.
func ImageUploadedEvent(productID int64) LifecycleEvent {
	return LifecycleEvent{
		Action:    ActionImageUploaded,
		ProductID: productID,
		Filename:  ProductImageFilename,
	}
}

func productEvent(action EventAction, p *Product) LifecycleEvent {
	price := p.Price
	return LifecycleEvent{
		Action:   action,
		ID:       p.ID,
		Name:     p.Name,
		UPC:      p.UPC,
		Price:    &price,
		Category: p.Category,
	}
}

// EventStatus represents the status of an event in the outbox.
type EventStatus string

const (
	// EventStatusPending indicates the event is waiting to be (re)published
	EventStatusPending EventStatus = "pending"
	// EventStatusProcessed indicates the event has been published
	EventStatusProcessed EventStatus = "processed"
	// EventStatusFailed indicates the retry has failed as well
	EventStatusFailed EventStatus = "failed"
)

// Event is an outbox entry holding a lifecycle event whose publish failed.
type Event struct {
	ID          uuid.UUID
	Topic       string
	EventType   string
	EventData   json.RawMessage
	Status      EventStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// InitMeta initializes the event metadata including ID and timestamps.
func (e *Event) InitMeta() {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	if e.Status == "" {
		e.Status = EventStatusPending
	}
}

// NewOutboxEvent wraps a lifecycle event for storage in the outbox.
func NewOutboxEvent(topic string, event LifecycleEvent) (*Event, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &Event{
		Topic:     topic,
		EventType: string(event.Action),
		EventData: data,
		Status:    EventStatusPending,
	}, nil
}

// LifecycleEvent decodes the stored payload.
func (e *Event) LifecycleEvent() (LifecycleEvent, error) {
	var event LifecycleEvent
	err := json.Unmarshal(e.EventData, &event)
	return event, err
}
