package domain

import "fmt"

// EventKind identifies a webhook event variant. The set is closed; anything
// the processor sends outside it maps to EventUnknown.
type EventKind string

const (
	EventCheckoutCompleted   EventKind = "checkout.session.completed"
	EventInvoicePaid         EventKind = "invoice.paid"
	EventSubscriptionUpdated EventKind = "customer.subscription.updated"
	EventSubscriptionDeleted EventKind = "customer.subscription.deleted"
	EventPaymentSucceeded    EventKind = "payment_intent.succeeded"
	EventPaymentFailed       EventKind = "payment_intent.payment_failed"
	EventUnknown             EventKind = "unknown"
)

// KindOf maps a provider event type string to its variant.
func KindOf(eventType string) EventKind {
	switch EventKind(eventType) {
	case EventCheckoutCompleted, EventInvoicePaid, EventSubscriptionUpdated,
		EventSubscriptionDeleted, EventPaymentSucceeded, EventPaymentFailed:
		return EventKind(eventType)
	}
	return EventUnknown
}

// TransitionEvent is a verified webhook event reduced to what the state
// machine needs: the kind and, for status-bearing events, the processor's
// reported target status.
type TransitionEvent struct {
	Kind         EventKind
	TargetStatus SubscriptionStatus
}

// Transition computes the next subscription status for a verified event.
// Returns ErrInvalidTransition when the event cannot legally apply to the
// current status; callers decide whether that is fatal (the webhook pipeline
// acknowledges and skips, so an out-of-order event never regresses a
// terminal state).
func Transition(current SubscriptionStatus, event TransitionEvent) (SubscriptionStatus, error) {
	if current.IsTerminal() {
		return current, fmt.Errorf("subscription is canceled: %w", ErrInvalidTransition)
	}

	switch event.Kind {
	case EventCheckoutCompleted:
		// Initial activation; the processor reports whether a trial applies.
		switch event.TargetStatus {
		case SubscriptionTrialing, SubscriptionActive, SubscriptionIncomplete:
			return event.TargetStatus, nil
		case "":
			return SubscriptionActive, nil
		}
		return current, fmt.Errorf("checkout completed with status %q: %w", event.TargetStatus, ErrInvalidTransition)

	case EventInvoicePaid:
		switch current {
		case SubscriptionTrialing, SubscriptionActive, SubscriptionPastDue:
			return SubscriptionActive, nil
		}
		return current, fmt.Errorf("invoice paid in status %q: %w", current, ErrInvalidTransition)

	case EventSubscriptionUpdated:
		return transitionUpdate(current, event.TargetStatus)

	case EventSubscriptionDeleted:
		return SubscriptionCanceled, nil

	case EventPaymentSucceeded, EventPaymentFailed:
		// One-time payments never move subscription state.
		return current, nil

	case EventUnknown:
		return current, nil
	}

	return current, fmt.Errorf("event kind %q: %w", event.Kind, ErrInvalidTransition)
}

func transitionUpdate(current, target SubscriptionStatus) (SubscriptionStatus, error) {
	if !target.IsValid() {
		return current, fmt.Errorf("update to status %q: %w", target, ErrInvalidTransition)
	}

	// incomplete is a transient pre-active state: only active or canceled
	// may follow it.
	if current == SubscriptionIncomplete &&
		target != SubscriptionActive && target != SubscriptionCanceled {
		return current, fmt.Errorf("incomplete subscription cannot move to %q: %w", target, ErrInvalidTransition)
	}

	switch target {
	case SubscriptionPastDue:
		if current == SubscriptionActive {
			return SubscriptionPastDue, nil
		}
		return current, fmt.Errorf("past_due requires active, not %q: %w", current, ErrInvalidTransition)

	case SubscriptionActive:
		switch current {
		case SubscriptionTrialing, SubscriptionPastDue, SubscriptionIncomplete, SubscriptionActive:
			return SubscriptionActive, nil
		}
		return current, fmt.Errorf("cannot activate from %q: %w", current, ErrInvalidTransition)

	case SubscriptionTrialing:
		if current == SubscriptionNone || current == SubscriptionTrialing {
			return SubscriptionTrialing, nil
		}
		return current, fmt.Errorf("cannot start trial from %q: %w", current, ErrInvalidTransition)

	case SubscriptionCanceled:
		return SubscriptionCanceled, nil

	case SubscriptionIncomplete:
		// Failed initial charge.
		if current == SubscriptionNone || current == SubscriptionIncomplete {
			return SubscriptionIncomplete, nil
		}
		return current, fmt.Errorf("cannot move %q to incomplete: %w", current, ErrInvalidTransition)
	}

	return current, fmt.Errorf("update to status %q: %w", target, ErrInvalidTransition)
}
