// Package outbox implements the transactional outbox pattern. Domain events
// are written to the outbox table in the same transaction as the aggregate
// change, then a background processor publishes them to the event bus.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/shared/domain"
)

// Message represents an outbox message ready for publishing.
type Message struct {
	ID          int64
	EventID     uuid.UUID
	AggregateID uuid.UUID
	EventType   string
	RoutingKey  string
	Payload     json.RawMessage
	CreatedAt   time.Time
	PublishedAt *time.Time
	NextRetryAt *time.Time
	RetryCount  int
	LastError   *string
}

// NewMessage creates an outbox message from a domain event.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:     event.EventID(),
		AggregateID: event.AggregateID(),
		EventType:   event.AggregateType(),
		RoutingKey:  event.RoutingKey(),
		Payload:     payload,
		CreatedAt:   event.OccurredAt(),
	}, nil
}

// IsPublished returns true if the message has been published.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry returns true if the message has retries left.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}
