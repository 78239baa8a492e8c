package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	"github.com/Gzeu/tarot-reading-app/internal/billing/infrastructure/stripe"
	identityDomain "github.com/Gzeu/tarot-reading-app/internal/identity/domain"
)

// ErrMissingRedirectURL is returned when a checkout request lacks the
// success or cancel redirect.
var ErrMissingRedirectURL = errors.New("success and cancel urls are required")

// CheckoutGateway creates hosted checkout sessions at the processor.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, params stripe.CheckoutParams) (*stripe.CheckoutSession, error)
}

// CreateCheckoutCommand contains the data to start a checkout.
type CreateCheckoutCommand struct {
	UserID     uuid.UUID
	ProductID  string
	SuccessURL string
	CancelURL  string
}

// CreateCheckoutResult carries the hosted session the client redirects to.
type CreateCheckoutResult struct {
	SessionID   string
	CheckoutURL string
}

// CreateCheckoutHandler handles the CreateCheckoutCommand. The call is
// synchronous and not retried internally; entitlement only changes later
// when the processor's webhook arrives.
type CreateCheckoutHandler struct {
	userRepo identityDomain.UserRepository
	gateway  CheckoutGateway
}

// NewCreateCheckoutHandler creates a new CreateCheckoutHandler.
func NewCreateCheckoutHandler(userRepo identityDomain.UserRepository, gateway CheckoutGateway) *CreateCheckoutHandler {
	return &CreateCheckoutHandler{userRepo: userRepo, gateway: gateway}
}

// Handle executes the CreateCheckoutCommand.
func (h *CreateCheckoutHandler) Handle(ctx context.Context, cmd CreateCheckoutCommand) (*CreateCheckoutResult, error) {
	if cmd.SuccessURL == "" || cmd.CancelURL == "" {
		return nil, ErrMissingRedirectURL
	}

	product, err := domain.GetProduct(cmd.ProductID)
	if err != nil {
		return nil, err
	}

	user, err := h.userRepo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	session, err := h.gateway.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		UserID:     user.ID(),
		Product:    product,
		CustomerID: user.StripeCustomerID(),
		SuccessURL: cmd.SuccessURL,
		CancelURL:  cmd.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	return &CreateCheckoutResult{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}
