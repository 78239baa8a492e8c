package domain

import (
	"github.com/google/uuid"

	shared "github.com/Gzeu/tarot-reading-app/internal/shared/domain"
)

// SubscriptionChanged is emitted after an entitlement transition is applied.
type SubscriptionChanged struct {
	shared.BaseEvent
	SubscriptionID string             `json:"subscriptionId"`
	UserID         uuid.UUID          `json:"userId"`
	OldStatus      SubscriptionStatus `json:"oldStatus"`
	NewStatus      SubscriptionStatus `json:"newStatus"`
	ProductID      string             `json:"productId,omitempty"`
}

// NewSubscriptionChanged creates the event for a status change.
func NewSubscriptionChanged(userID uuid.UUID, subscriptionID string, oldStatus, newStatus SubscriptionStatus, productID string) SubscriptionChanged {
	key := "billing.subscription.updated"
	switch newStatus {
	case SubscriptionActive, SubscriptionTrialing:
		if oldStatus == SubscriptionNone || oldStatus == SubscriptionIncomplete {
			key = "billing.subscription.activated"
		}
	case SubscriptionCanceled:
		key = "billing.subscription.canceled"
	}
	return SubscriptionChanged{
		BaseEvent:      shared.NewBaseEvent(userID, "subscription", key),
		SubscriptionID: subscriptionID,
		UserID:         userID,
		OldStatus:      oldStatus,
		NewStatus:      newStatus,
		ProductID:      productID,
	}
}

// PaymentRecorded is emitted when a one-time payment outcome is persisted.
type PaymentRecorded struct {
	shared.BaseEvent
	PaymentID   uuid.UUID     `json:"paymentId"`
	UserID      uuid.UUID     `json:"userId"`
	ProductID   string        `json:"productId,omitempty"`
	AmountCents int64         `json:"amountCents"`
	Status      PaymentStatus `json:"status"`
}

// NewPaymentRecorded creates the event for a payment record.
func NewPaymentRecorded(p *Payment) PaymentRecorded {
	key := "billing.payment.succeeded"
	if p.Status == PaymentFailedStatus {
		key = "billing.payment.failed"
	}
	return PaymentRecorded{
		BaseEvent:   shared.NewBaseEvent(p.ID, "payment", key),
		PaymentID:   p.ID,
		UserID:      p.UserID,
		ProductID:   p.ProductID,
		AmountCents: p.AmountCents,
		Status:      p.Status,
	}
}
