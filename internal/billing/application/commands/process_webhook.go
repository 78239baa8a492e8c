// Package commands holds the write-side handlers for billing: webhook
// ingestion and checkout session creation.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	identityDomain "github.com/Gzeu/tarot-reading-app/internal/identity/domain"
	sharedApplication "github.com/Gzeu/tarot-reading-app/internal/shared/application"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/outbox"
)

// ErrMalformedEvent is returned when a verified payload cannot be parsed.
var ErrMalformedEvent = errors.New("malformed webhook event")

// SignatureVerifier validates the raw payload against the signature header
// before anything else happens.
type SignatureVerifier interface {
	Verify(payload []byte, header string) error
}

// WebhookOutcome describes how an event was handled. Every outcome except a
// returned error is acknowledged to the processor with success.
type WebhookOutcome string

const (
	// OutcomeProcessed means the event changed durable state.
	OutcomeProcessed WebhookOutcome = "processed"
	// OutcomeDuplicate means the event id was already recorded.
	OutcomeDuplicate WebhookOutcome = "duplicate"
	// OutcomeIgnored means the event kind is not one we handle.
	OutcomeIgnored WebhookOutcome = "ignored"
	// OutcomeSkipped means the event was recorded but could not legally
	// apply (out-of-order delivery or an unresolvable reference).
	OutcomeSkipped WebhookOutcome = "skipped"
)

// ProcessWebhookCommand carries one raw webhook delivery.
type ProcessWebhookCommand struct {
	Payload   []byte
	Signature string
}

// ProcessWebhookResult reports how the delivery was handled.
type ProcessWebhookResult struct {
	EventID   string
	EventType string
	Outcome   WebhookOutcome
}

// ProcessWebhookHandler verifies, deduplicates and applies webhook events.
// The idempotency record and the entitlement change commit in the same
// transaction, so a duplicate delivery racing with itself cannot apply
// twice, and a persistence failure surfaces as an error so the processor
// redelivers.
type ProcessWebhookHandler struct {
	verifier         SignatureVerifier
	userRepo         identityDomain.UserRepository
	subscriptionRepo domain.SubscriptionRepository
	processedRepo    domain.ProcessedEventRepository
	paymentRepo      domain.PaymentRepository
	outboxRepo       outbox.Repository
	uow              sharedApplication.UnitOfWork
	logger           *slog.Logger
}

// NewProcessWebhookHandler creates a new ProcessWebhookHandler.
func NewProcessWebhookHandler(
	verifier SignatureVerifier,
	userRepo identityDomain.UserRepository,
	subscriptionRepo domain.SubscriptionRepository,
	processedRepo domain.ProcessedEventRepository,
	paymentRepo domain.PaymentRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *ProcessWebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessWebhookHandler{
		verifier:         verifier,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		processedRepo:    processedRepo,
		paymentRepo:      paymentRepo,
		outboxRepo:       outboxRepo,
		uow:              uow,
		logger:           logger,
	}
}

// Handle executes the ProcessWebhookCommand.
func (h *ProcessWebhookHandler) Handle(ctx context.Context, cmd ProcessWebhookCommand) (*ProcessWebhookResult, error) {
	if err := h.verifier.Verify(cmd.Payload, cmd.Signature); err != nil {
		h.logger.Warn("webhook signature rejected", "error", err)
		return nil, err
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(cmd.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if envelope.ID == "" || envelope.Type == "" {
		return nil, fmt.Errorf("%w: missing id or type", ErrMalformedEvent)
	}

	result := &ProcessWebhookResult{EventID: envelope.ID, EventType: envelope.Type}

	kind := domain.KindOf(envelope.Type)
	if kind == domain.EventUnknown {
		h.logger.Info("ignoring unknown webhook event kind",
			"event_id", envelope.ID,
			"event_type", envelope.Type,
		)
		result.Outcome = OutcomeIgnored
		return result, nil
	}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		// Insert first: a duplicate delivery conflicts here before any
		// state is touched, and the record commits with the change.
		err := h.processedRepo.Insert(txCtx, domain.ProcessedEvent{
			EventID:     envelope.ID,
			EventType:   envelope.Type,
			ProcessedAt: time.Now().UTC(),
		})
		if err != nil {
			if database.IsUniqueViolation(err) {
				return domain.ErrEventAlreadyProcessed
			}
			return err
		}

		outcome, err := h.apply(txCtx, kind, envelope)
		if err != nil {
			return err
		}
		result.Outcome = outcome
		return nil
	})
	if errors.Is(err, domain.ErrEventAlreadyProcessed) {
		h.logger.Info("webhook event already processed", "event_id", envelope.ID)
		result.Outcome = OutcomeDuplicate
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (h *ProcessWebhookHandler) apply(ctx context.Context, kind domain.EventKind, envelope webhookEnvelope) (WebhookOutcome, error) {
	switch kind {
	case domain.EventCheckoutCompleted:
		return h.applyCheckoutCompleted(ctx, envelope)
	case domain.EventInvoicePaid:
		return h.applyInvoicePaid(ctx, envelope)
	case domain.EventSubscriptionUpdated, domain.EventSubscriptionDeleted:
		return h.applySubscriptionChange(ctx, kind, envelope)
	case domain.EventPaymentSucceeded, domain.EventPaymentFailed:
		return h.applyPaymentIntent(ctx, kind, envelope)
	}
	return OutcomeIgnored, nil
}

func (h *ProcessWebhookHandler) applyCheckoutCompleted(ctx context.Context, envelope webhookEnvelope) (WebhookOutcome, error) {
	var session checkoutSessionObject
	if err := json.Unmarshal(envelope.Data.Object, &session); err != nil {
		return "", fmt.Errorf("%w: checkout session: %v", ErrMalformedEvent, err)
	}

	user, found, err := h.resolveUser(ctx, session.Metadata["user_id"], session.Customer)
	if err != nil {
		return "", err
	}
	if !found {
		h.logger.Warn("checkout session for unknown user",
			"event_id", envelope.ID,
			"customer", session.Customer,
		)
		return OutcomeSkipped, nil
	}

	if user.StripeCustomerID() == "" && session.Customer != "" {
		user.SetStripeCustomerID(session.Customer)
	}

	// One-time purchases record a payment and leave entitlement alone.
	if session.Mode != "subscription" {
		payment := domain.NewPayment(
			user.ID(), session.Metadata["product_id"],
			session.AmountTotal, session.Currency,
			domain.PaymentSucceededStatus, session.ID,
		)
		if err := h.recordPayment(ctx, payment); err != nil {
			return "", err
		}
		return h.finishUser(ctx, user, OutcomeProcessed)
	}

	if session.Subscription == "" {
		h.logger.Warn("subscription checkout without subscription id", "event_id", envelope.ID)
		return h.finishUser(ctx, user, OutcomeSkipped)
	}

	target := domain.SubscriptionStatus(session.SubscriptionStatus)
	return h.transition(ctx, user, subscriptionPatch{
		id:        session.Subscription,
		productID: session.Metadata["product_id"],
		priceID:   session.PriceID,
	}, domain.TransitionEvent{Kind: domain.EventCheckoutCompleted, TargetStatus: target}, envelope.ID)
}

func (h *ProcessWebhookHandler) applyInvoicePaid(ctx context.Context, envelope webhookEnvelope) (WebhookOutcome, error) {
	var invoice invoiceObject
	if err := json.Unmarshal(envelope.Data.Object, &invoice); err != nil {
		return "", fmt.Errorf("%w: invoice: %v", ErrMalformedEvent, err)
	}
	if invoice.Subscription == "" {
		// One-off invoices carry no subscription; nothing to transition.
		return OutcomeSkipped, nil
	}

	user, found, err := h.resolveUser(ctx, "", invoice.Customer)
	if err != nil {
		return "", err
	}
	if !found {
		h.logger.Warn("invoice for unknown customer",
			"event_id", envelope.ID,
			"customer", invoice.Customer,
		)
		return OutcomeSkipped, nil
	}

	patch := subscriptionPatch{id: invoice.Subscription}
	if invoice.PeriodEnd > 0 {
		end := time.Unix(invoice.PeriodEnd, 0).UTC()
		patch.currentPeriodEnd = &end
	}
	return h.transition(ctx, user, patch,
		domain.TransitionEvent{Kind: domain.EventInvoicePaid}, envelope.ID)
}

func (h *ProcessWebhookHandler) applySubscriptionChange(ctx context.Context, kind domain.EventKind, envelope webhookEnvelope) (WebhookOutcome, error) {
	var sub subscriptionObject
	if err := json.Unmarshal(envelope.Data.Object, &sub); err != nil {
		return "", fmt.Errorf("%w: subscription: %v", ErrMalformedEvent, err)
	}
	if sub.ID == "" {
		return "", fmt.Errorf("%w: subscription without id", ErrMalformedEvent)
	}

	user, found, err := h.resolveUser(ctx, sub.Metadata["user_id"], sub.Customer)
	if err != nil {
		return "", err
	}
	if !found {
		h.logger.Warn("subscription event for unknown customer",
			"event_id", envelope.ID,
			"customer", sub.Customer,
		)
		return OutcomeSkipped, nil
	}

	patch := subscriptionPatch{
		id:                sub.ID,
		cancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		patch.currentPeriodEnd = &end
	}
	if price := sub.priceID(); price != "" {
		if product, err := domain.GetProductByPriceID(price); err == nil {
			patch.productID = product.ID
			patch.priceID = price
		}
	}

	event := domain.TransitionEvent{Kind: kind}
	if kind == domain.EventSubscriptionUpdated {
		event.TargetStatus = domain.SubscriptionStatus(sub.Status)
	}
	return h.transition(ctx, user, patch, event, envelope.ID)
}

func (h *ProcessWebhookHandler) applyPaymentIntent(ctx context.Context, kind domain.EventKind, envelope webhookEnvelope) (WebhookOutcome, error) {
	var intent paymentIntentObject
	if err := json.Unmarshal(envelope.Data.Object, &intent); err != nil {
		return "", fmt.Errorf("%w: payment intent: %v", ErrMalformedEvent, err)
	}

	user, found, err := h.resolveUser(ctx, intent.Metadata["user_id"], intent.Customer)
	if err != nil {
		return "", err
	}
	if !found {
		h.logger.Warn("payment intent for unknown user", "event_id", envelope.ID)
		return OutcomeSkipped, nil
	}

	status := domain.PaymentSucceededStatus
	if kind == domain.EventPaymentFailed {
		status = domain.PaymentFailedStatus
	}
	payment := domain.NewPayment(
		user.ID(), intent.Metadata["product_id"],
		intent.Amount, intent.Currency, status, intent.ID,
	)
	if err := h.recordPayment(ctx, payment); err != nil {
		return "", err
	}
	return OutcomeProcessed, nil
}

// subscriptionPatch carries the event's reported subscription fields; zero
// fields keep whatever the stored row already has.
type subscriptionPatch struct {
	id                string
	productID         string
	priceID           string
	currentPeriodEnd  *time.Time
	cancelAtPeriodEnd bool
}

// transition loads the subscription's current lifecycle state, runs the
// state machine, and persists the result. An illegal transition is logged
// and acknowledged without applying, so an out-of-order delivery never
// loops through the processor's retries.
func (h *ProcessWebhookHandler) transition(
	ctx context.Context,
	user *identityDomain.User,
	patch subscriptionPatch,
	event domain.TransitionEvent,
	eventID string,
) (WebhookOutcome, error) {
	current := domain.SubscriptionNone
	sub, err := h.subscriptionRepo.FindByID(ctx, patch.id)
	switch {
	case err == nil:
		current = sub.Status
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		sub = &domain.Subscription{
			ID:        patch.id,
			UserID:    user.ID(),
			Status:    domain.SubscriptionNone,
			CreatedAt: time.Now().UTC(),
		}
	default:
		return "", err
	}

	next, err := domain.Transition(current, event)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			h.logger.Warn("webhook event cannot apply, acknowledging",
				"event_id", eventID,
				"subscription_id", patch.id,
				"current_status", current,
				"error", err,
			)
			return h.finishUser(ctx, user, OutcomeSkipped)
		}
		return "", err
	}

	sub.Status = next
	if patch.productID != "" {
		sub.ProductID = patch.productID
	}
	if patch.priceID != "" {
		sub.PriceID = patch.priceID
	}
	if patch.currentPeriodEnd != nil {
		sub.CurrentPeriodEnd = patch.currentPeriodEnd
	}
	sub.CancelAtPeriodEnd = patch.cancelAtPeriodEnd
	sub.UpdatedAt = time.Now().UTC()

	if err := h.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return "", err
	}

	oldStatus := user.Entitlement().Status
	if h.entitlementFollows(user, sub) {
		user.ApplySubscription(sub)
	}
	if err := h.userRepo.Save(ctx, user); err != nil {
		return "", err
	}

	changed := domain.NewSubscriptionChanged(user.ID(), sub.ID, oldStatus, next, sub.ProductID)
	msg, err := outbox.NewMessage(changed)
	if err != nil {
		return "", err
	}
	if err := h.outboxRepo.Save(ctx, msg); err != nil {
		return "", err
	}

	return OutcomeProcessed, nil
}

// entitlementFollows reports whether this subscription drives the user's
// entitlement. A canceled older subscription never blocks a new lifecycle;
// an event for a stale subscription id must not overwrite a live one.
func (h *ProcessWebhookHandler) entitlementFollows(user *identityDomain.User, sub *domain.Subscription) bool {
	currentID := user.Entitlement().SubscriptionID
	if currentID == "" || currentID == sub.ID {
		return true
	}
	return user.Entitlement().Status.IsTerminal() || user.Entitlement().Status == domain.SubscriptionNone
}

func (h *ProcessWebhookHandler) recordPayment(ctx context.Context, payment *domain.Payment) error {
	if err := h.paymentRepo.Save(ctx, payment); err != nil {
		return err
	}
	msg, err := outbox.NewMessage(domain.NewPaymentRecorded(payment))
	if err != nil {
		return err
	}
	return h.outboxRepo.Save(ctx, msg)
}

// finishUser persists user mutations that happen outside a transition, such
// as linking the processor customer id.
func (h *ProcessWebhookHandler) finishUser(ctx context.Context, user *identityDomain.User, outcome WebhookOutcome) (WebhookOutcome, error) {
	if err := h.userRepo.Save(ctx, user); err != nil {
		return "", err
	}
	return outcome, nil
}

// resolveUser finds the target user by metadata user id first, then by the
// processor customer reference.
func (h *ProcessWebhookHandler) resolveUser(ctx context.Context, metadataUserID, customerID string) (*identityDomain.User, bool, error) {
	if metadataUserID != "" {
		id, err := uuid.Parse(metadataUserID)
		if err == nil {
			user, err := h.userRepo.FindByID(ctx, id)
			if err == nil {
				return user, true, nil
			}
			if !errors.Is(err, identityDomain.ErrUserNotFound) {
				return nil, false, err
			}
		}
	}
	if customerID != "" {
		user, err := h.userRepo.FindByStripeCustomerID(ctx, customerID)
		if err == nil {
			return user, true, nil
		}
		if !errors.Is(err, identityDomain.ErrUserNotFound) {
			return nil, false, err
		}
	}
	return nil, false, nil
}
