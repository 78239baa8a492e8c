package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Gzeu/tarot-reading-app/internal/billing/application/commands"
	"github.com/Gzeu/tarot-reading-app/internal/billing/application/queries"
	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
)

// BillingHandler handles billing API requests.
type BillingHandler struct {
	createCheckout *commands.CreateCheckoutHandler
	getEntitlement *queries.GetEntitlementHandler
	listPayments   *queries.ListPaymentsHandler
	logger         *slog.Logger
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(
	createCheckout *commands.CreateCheckoutHandler,
	getEntitlement *queries.GetEntitlementHandler,
	listPayments *queries.ListPaymentsHandler,
	logger *slog.Logger,
) *BillingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillingHandler{
		createCheckout: createCheckout,
		getEntitlement: getEntitlement,
		listPayments:   listPayments,
		logger:         logger,
	}
}

type createCheckoutRequest struct {
	ProductID  string `json:"productId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

type createCheckoutResponse struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// CreateCheckout handles POST /api/v1/billing/checkout
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	if h.createCheckout == nil {
		writeError(w, http.StatusServiceUnavailable, "billing_disabled", "Billing is not configured")
		return
	}

	userID, _ := UserIDFromContext(r.Context())

	var req createCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Invalid JSON body")
		return
	}

	result, err := h.createCheckout.Handle(r.Context(), commands.CreateCheckoutCommand{
		UserID:     userID,
		ProductID:  req.ProductID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, createCheckoutResponse{
		SessionID:   result.SessionID,
		CheckoutURL: result.CheckoutURL,
	})
}

// ListProducts handles GET /api/v1/billing/products
func (h *BillingHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"products": domain.ListProducts()})
}

// GetEntitlement handles GET /api/v1/billing/entitlement
func (h *BillingHandler) GetEntitlement(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	view, err := h.getEntitlement.Handle(r.Context(), queries.GetEntitlementQuery{UserID: userID})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListPayments handles GET /api/v1/billing/payments
func (h *BillingHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	views, err := h.listPayments.Handle(r.Context(), queries.ListPaymentsQuery{UserID: userID})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": views})
}
