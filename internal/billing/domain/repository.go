package domain

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionRepository defines access for subscription persistence.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, subscription *Subscription) error
	FindByID(ctx context.Context, id string) (*Subscription, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)
}

// ProcessedEventRepository guards webhook idempotency. Insert must fail with
// a unique violation when the event ID was already recorded, inside the same
// transaction as the entitlement change.
type ProcessedEventRepository interface {
	Insert(ctx context.Context, event ProcessedEvent) error
	Exists(ctx context.Context, eventID string) (bool, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// PaymentRepository persists one-time payment records.
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error)
}
