// Package domain holds the billing model: subscription lifecycle, the
// entitlement policy, the product catalog, and webhook event records.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Billing errors.
var (
	ErrInvalidTransition     = errors.New("invalid subscription transition")
	ErrQuotaExceeded         = errors.New("free reading quota exceeded")
	ErrProductNotFound       = errors.New("product not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrUpstreamUnavailable   = errors.New("payment processor unavailable")
	ErrSignatureInvalid      = errors.New("webhook signature invalid")
	ErrEventAlreadyProcessed = errors.New("event already processed")
)

// SubscriptionStatus represents the current billing state.
type SubscriptionStatus string

const (
	SubscriptionNone       SubscriptionStatus = "none"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
)

// IsValid reports whether s is one of the known statuses.
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionNone, SubscriptionTrialing, SubscriptionActive,
		SubscriptionPastDue, SubscriptionCanceled, SubscriptionIncomplete:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the subscription lifecycle.
// A new subscription starts a fresh lifecycle under a new ID.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionCanceled
}

// Subscription represents one provider-side subscription lifecycle.
// The ID is the payment processor's subscription identifier.
type Subscription struct {
	ID                string
	UserID            uuid.UUID
	Status            SubscriptionStatus
	ProductID         string
	PriceID           string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
