// Package events publishes ledger change notifications.
package events

import (
	"context"
	"time"

	"budgetledger/internal/uuid"
)

// Event types emitted after a mutation commits.
const (
	CategoryCreated    = "category.created"
	CategoryUpdated    = "category.updated"
	CategoryDeleted    = "category.deleted"
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
)

// Event is the message body sent to subscribers.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   int64     `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType string, entityID int64, payload any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// NewPublisher connects to the broker at url, or returns a NopPublisher
// when url is empty.
func NewPublisher(url, exchange string) (Publisher, error) {
	if url == "" {
		return NopPublisher{}, nil
	}
	return NewAMQPPublisher(url, exchange)
}
