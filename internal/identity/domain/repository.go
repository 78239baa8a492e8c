package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines access for user persistence.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDForUpdate loads the user under a row lock so the quota
	// check-and-increment is serialized per user. Must be called inside a
	// transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*User, error)

	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*User, error)
}
