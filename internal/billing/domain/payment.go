package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the outcome of a one-time payment attempt.
type PaymentStatus string

const (
	PaymentSucceededStatus PaymentStatus = "succeeded"
	PaymentFailedStatus    PaymentStatus = "failed"
)

// Payment is a one-time payment record. Failed payments are kept for
// support visibility; they never change entitlement state.
type Payment struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ProductID   string
	AmountCents int64
	Currency    string
	Status      PaymentStatus
	ProviderRef string
	CreatedAt   time.Time
}

// NewPayment creates a payment record for a processor payment intent.
func NewPayment(userID uuid.UUID, productID string, amountCents int64, currency string, status PaymentStatus, providerRef string) *Payment {
	if currency == "" {
		currency = "usd"
	}
	return &Payment{
		ID:          uuid.New(),
		UserID:      userID,
		ProductID:   productID,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      status,
		ProviderRef: providerRef,
		CreatedAt:   time.Now().UTC(),
	}
}
