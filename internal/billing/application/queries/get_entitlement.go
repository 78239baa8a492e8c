// Package queries holds the read-side handlers for billing.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	identityDomain "github.com/Gzeu/tarot-reading-app/internal/identity/domain"
)

// EntitlementView is the billing status a client renders: current plan plus
// where the free quota stands for this calendar month.
type EntitlementView struct {
	Status           domain.SubscriptionStatus `json:"status"`
	Unlimited        bool                      `json:"unlimited"`
	PlanProductID    string                    `json:"planProductId,omitempty"`
	PlanName         string                    `json:"planName,omitempty"`
	CurrentPeriodEnd *time.Time                `json:"currentPeriodEnd,omitempty"`
	QuotaLimit       int                       `json:"quotaLimit"`
	QuotaUsed        int                       `json:"quotaUsed"`
	QuotaRemaining   int                       `json:"quotaRemaining"`
	ReadingStreak    int                       `json:"readingStreak"`
}

// GetEntitlementQuery requests the billing status for one user.
type GetEntitlementQuery struct {
	UserID uuid.UUID
}

// GetEntitlementHandler handles the GetEntitlementQuery.
type GetEntitlementHandler struct {
	userRepo identityDomain.UserRepository
	clock    func() time.Time
	location *time.Location
}

// NewGetEntitlementHandler creates a new GetEntitlementHandler.
func NewGetEntitlementHandler(userRepo identityDomain.UserRepository) *GetEntitlementHandler {
	return &GetEntitlementHandler{
		userRepo: userRepo,
		clock:    time.Now,
		location: time.UTC,
	}
}

// WithClock overrides wall-clock time for tests.
func (h *GetEntitlementHandler) WithClock(clock func() time.Time) *GetEntitlementHandler {
	h.clock = clock
	return h
}

// WithLocation sets the reference location for quota period computations.
// Must match the location used when recording readings.
func (h *GetEntitlementHandler) WithLocation(loc *time.Location) *GetEntitlementHandler {
	if loc != nil {
		h.location = loc
	}
	return h
}

// Handle executes the GetEntitlementQuery.
func (h *GetEntitlementHandler) Handle(ctx context.Context, query GetEntitlementQuery) (*EntitlementView, error) {
	user, err := h.userRepo.FindByID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	entitlement := user.Entitlement()
	view := &EntitlementView{
		Status:           entitlement.Status,
		Unlimited:        domain.Unlimited(entitlement.Status),
		PlanProductID:    entitlement.PlanProductID,
		CurrentPeriodEnd: entitlement.CurrentPeriodEnd,
		QuotaLimit:       domain.FreeMonthlyQuota,
		ReadingStreak:    user.ReadingStreak(),
	}

	if product, err := domain.GetProduct(entitlement.PlanProductID); err == nil {
		view.PlanName = product.Name
	}

	if !view.Unlimited {
		view.QuotaUsed = user.QuotaUsedInPeriod(h.clock(), h.location)
		view.QuotaRemaining = domain.FreeMonthlyQuota - view.QuotaUsed
		if view.QuotaRemaining < 0 {
			view.QuotaRemaining = 0
		}
	}

	return view, nil
}
