package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
)

// PaymentView is one payment record as rendered to the client.
type PaymentView struct {
	ID          uuid.UUID            `json:"id"`
	ProductID   string               `json:"productId,omitempty"`
	ProductName string               `json:"productName,omitempty"`
	AmountCents int64                `json:"amountCents"`
	Currency    string               `json:"currency"`
	Status      domain.PaymentStatus `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// ListPaymentsQuery requests a user's payment history.
type ListPaymentsQuery struct {
	UserID uuid.UUID
}

// ListPaymentsHandler handles the ListPaymentsQuery.
type ListPaymentsHandler struct {
	paymentRepo domain.PaymentRepository
}

// NewListPaymentsHandler creates a new ListPaymentsHandler.
func NewListPaymentsHandler(paymentRepo domain.PaymentRepository) *ListPaymentsHandler {
	return &ListPaymentsHandler{paymentRepo: paymentRepo}
}

// Handle executes the ListPaymentsQuery.
func (h *ListPaymentsHandler) Handle(ctx context.Context, query ListPaymentsQuery) ([]PaymentView, error) {
	payments, err := h.paymentRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]PaymentView, 0, len(payments))
	for _, payment := range payments {
		view := PaymentView{
			ID:          payment.ID,
			ProductID:   payment.ProductID,
			AmountCents: payment.AmountCents,
			Currency:    payment.Currency,
			Status:      payment.Status,
			CreatedAt:   payment.CreatedAt,
		}
		if product, err := domain.GetProduct(payment.ProductID); err == nil {
			view.ProductName = product.Name
		}
		views = append(views, view)
	}
	return views, nil
}
