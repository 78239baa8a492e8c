package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/Gzeu/tarot-reading-app/internal/billing/application/commands"
)

// maxWebhookBody bounds the webhook payload size.
const maxWebhookBody = 1 << 20

// WebhookHandler receives payment processor webhooks.
type WebhookHandler struct {
	process *commands.ProcessWebhookHandler
	logger  *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(process *commands.ProcessWebhookHandler, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{process: process, logger: logger}
}

// HandleStripe handles POST /webhooks/stripe.
//
// Returns 200 for every acknowledged event, including duplicates and
// no-ops, so the processor stops redelivering. Persistence failures return
// 500 and rely on redelivery.
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "Unreadable request body")
		return
	}

	result, err := h.process.Handle(r.Context(), commands.ProcessWebhookCommand{
		Payload:   payload,
		Signature: r.Header.Get("Stripe-Signature"),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("webhook acknowledged",
		"event_id", result.EventID,
		"event_type", result.EventType,
		"outcome", result.Outcome,
	)
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
