package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
)

func TestTransition_CheckoutCompleted(t *testing.T) {
	tests := []struct {
		name    string
		current domain.SubscriptionStatus
		target  domain.SubscriptionStatus
		want    domain.SubscriptionStatus
	}{
		{"none to active", domain.SubscriptionNone, domain.SubscriptionActive, domain.SubscriptionActive},
		{"none to trialing", domain.SubscriptionNone, domain.SubscriptionTrialing, domain.SubscriptionTrialing},
		{"failed initial charge", domain.SubscriptionNone, domain.SubscriptionIncomplete, domain.SubscriptionIncomplete},
		{"default status activates", domain.SubscriptionNone, "", domain.SubscriptionActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := domain.Transition(tt.current, domain.TransitionEvent{
				Kind:         domain.EventCheckoutCompleted,
				TargetStatus: tt.target,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestTransition_InvoicePaid(t *testing.T) {
	for _, current := range []domain.SubscriptionStatus{
		domain.SubscriptionTrialing, domain.SubscriptionActive, domain.SubscriptionPastDue,
	} {
		next, err := domain.Transition(current, domain.TransitionEvent{Kind: domain.EventInvoicePaid})
		require.NoError(t, err, "from %s", current)
		assert.Equal(t, domain.SubscriptionActive, next)
	}

	_, err := domain.Transition(domain.SubscriptionNone, domain.TransitionEvent{Kind: domain.EventInvoicePaid})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = domain.Transition(domain.SubscriptionIncomplete, domain.TransitionEvent{Kind: domain.EventInvoicePaid})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_PastDueCycle(t *testing.T) {
	next, err := domain.Transition(domain.SubscriptionActive, domain.TransitionEvent{
		Kind:         domain.EventSubscriptionUpdated,
		TargetStatus: domain.SubscriptionPastDue,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionPastDue, next)

	next, err = domain.Transition(next, domain.TransitionEvent{
		Kind:         domain.EventSubscriptionUpdated,
		TargetStatus: domain.SubscriptionActive,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, next)

	// past_due requires a currently active subscription.
	_, err = domain.Transition(domain.SubscriptionTrialing, domain.TransitionEvent{
		Kind:         domain.EventSubscriptionUpdated,
		TargetStatus: domain.SubscriptionPastDue,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_DeletedAlwaysCancels(t *testing.T) {
	for _, current := range []domain.SubscriptionStatus{
		domain.SubscriptionNone, domain.SubscriptionTrialing, domain.SubscriptionActive,
		domain.SubscriptionPastDue, domain.SubscriptionIncomplete,
	} {
		next, err := domain.Transition(current, domain.TransitionEvent{Kind: domain.EventSubscriptionDeleted})
		require.NoError(t, err, "from %s", current)
		assert.Equal(t, domain.SubscriptionCanceled, next)
	}
}

func TestTransition_CanceledIsTerminal(t *testing.T) {
	events := []domain.TransitionEvent{
		{Kind: domain.EventInvoicePaid},
		{Kind: domain.EventSubscriptionUpdated, TargetStatus: domain.SubscriptionActive},
		{Kind: domain.EventSubscriptionDeleted},
		{Kind: domain.EventCheckoutCompleted, TargetStatus: domain.SubscriptionActive},
	}

	for _, ev := range events {
		next, err := domain.Transition(domain.SubscriptionCanceled, ev)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "event %s", ev.Kind)
		assert.Equal(t, domain.SubscriptionCanceled, next)
	}
}

func TestTransition_IncompleteOnlyToActiveOrCanceled(t *testing.T) {
	next, err := domain.Transition(domain.SubscriptionIncomplete, domain.TransitionEvent{
		Kind:         domain.EventSubscriptionUpdated,
		TargetStatus: domain.SubscriptionActive,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, next)

	next, err = domain.Transition(domain.SubscriptionIncomplete, domain.TransitionEvent{
		Kind:         domain.EventSubscriptionUpdated,
		TargetStatus: domain.SubscriptionCanceled,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCanceled, next)

	_, err = domain.Transition(domain.SubscriptionIncomplete, domain.TransitionEvent{
		Kind:         domain.EventSubscriptionUpdated,
		TargetStatus: domain.SubscriptionTrialing,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = domain.Transition(domain.SubscriptionIncomplete, domain.TransitionEvent{
		Kind:         domain.EventSubscriptionUpdated,
		TargetStatus: domain.SubscriptionPastDue,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_OneTimePaymentsDontMoveState(t *testing.T) {
	for _, kind := range []domain.EventKind{domain.EventPaymentSucceeded, domain.EventPaymentFailed} {
		next, err := domain.Transition(domain.SubscriptionPastDue, domain.TransitionEvent{Kind: kind})
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionPastDue, next)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, domain.EventInvoicePaid, domain.KindOf("invoice.paid"))
	assert.Equal(t, domain.EventUnknown, domain.KindOf("customer.created"))
	assert.Equal(t, domain.EventUnknown, domain.KindOf(""))
}
