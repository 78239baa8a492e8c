package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billing "github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	"github.com/Gzeu/tarot-reading-app/internal/identity/domain"
)

func newUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := domain.NewUser("seeker@example.com", "Seeker")
	require.NoError(t, err)
	return user
}

func TestNewUser(t *testing.T) {
	user := newUser(t)

	assert.Equal(t, "seeker@example.com", user.Email())
	assert.Equal(t, billing.SubscriptionNone, user.Entitlement().Status)
	assert.Equal(t, 0, user.QuotaUsed())
	assert.Equal(t, 0, user.ReadingStreak())
	assert.Len(t, user.DomainEvents(), 1)
}

func TestNewUser_InvalidEmail(t *testing.T) {
	_, err := domain.NewUser("", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = domain.NewUser("not-an-email", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestNewUser_NormalizesEmail(t *testing.T) {
	user, err := domain.NewUser("  Seeker@Example.COM ", "Seeker")
	require.NoError(t, err)
	assert.Equal(t, "seeker@example.com", user.Email())
}

func TestCanGenerateReading_FreeTierQuota(t *testing.T) {
	user := newUser(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < billing.FreeMonthlyQuota; i++ {
		require.NoError(t, user.CanGenerateReading(now, time.UTC), "reading %d", i+1)
		user.RecordReading(now, time.UTC)
	}

	err := user.CanGenerateReading(now, time.UTC)
	assert.ErrorIs(t, err, billing.ErrQuotaExceeded)
}

func TestCanGenerateReading_QuotaResetsNextMonth(t *testing.T) {
	user := newUser(t)
	march := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)

	for i := 0; i < billing.FreeMonthlyQuota; i++ {
		user.RecordReading(march, time.UTC)
	}
	require.ErrorIs(t, user.CanGenerateReading(march, time.UTC), billing.ErrQuotaExceeded)

	april := time.Date(2026, 4, 1, 0, 30, 0, 0, time.UTC)
	assert.NoError(t, user.CanGenerateReading(april, time.UTC))

	user.RecordReading(april, time.UTC)
	assert.Equal(t, 1, user.QuotaUsed())
	assert.Equal(t, "2026-04", user.QuotaPeriod())
}

func TestCanGenerateReading_UnlimitedNeverDenied(t *testing.T) {
	user := newUser(t)
	sub := &billing.Subscription{
		ID:        "sub_1",
		UserID:    user.ID(),
		Status:    billing.SubscriptionActive,
		ProductID: "prod_pro_plan",
	}
	user.ApplySubscription(sub)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		require.NoError(t, user.CanGenerateReading(now, time.UTC))
		user.RecordReading(now.Add(time.Duration(i)*time.Minute), time.UTC)
	}
	// Unlimited users don't consume the free counter.
	assert.Equal(t, 0, user.QuotaUsed())
}

func TestRecordReading_StreakIncrement(t *testing.T) {
	user := newUser(t)

	user.RecordReading(time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 1, user.ReadingStreak())

	user.RecordReading(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 2, user.ReadingStreak())
	assert.Equal(t, "2026-03-10", user.LastReadingDate())
}

func TestRecordReading_StreakResetsAfterGap(t *testing.T) {
	user := newUser(t)

	user.RecordReading(time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC), time.UTC)
	user.RecordReading(time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC), time.UTC)
	require.Equal(t, 2, user.ReadingStreak())

	user.RecordReading(time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 1, user.ReadingStreak())
}

func TestRecordReading_SameDayDoesNotIncrement(t *testing.T) {
	user := newUser(t)

	user.RecordReading(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), time.UTC)
	user.RecordReading(time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 1, user.ReadingStreak())
	assert.Equal(t, 2, user.QuotaUsed())
}

func TestRecordReading_StreakUsesReferenceLocation(t *testing.T) {
	user := newUser(t)
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC on the 10th is still the 9th in New York.
	user.RecordReading(time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, "2026-03-09", user.LastReadingDate())
}

func TestApplySubscription(t *testing.T) {
	user := newUser(t)
	periodEnd := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	sub := &billing.Subscription{
		ID:               "sub_42",
		UserID:           user.ID(),
		Status:           billing.SubscriptionTrialing,
		ProductID:        "prod_starter_plan",
		CurrentPeriodEnd: &periodEnd,
	}

	user.ApplySubscription(sub)

	ent := user.Entitlement()
	assert.Equal(t, billing.SubscriptionTrialing, ent.Status)
	assert.Equal(t, "sub_42", ent.SubscriptionID)
	assert.Equal(t, "prod_starter_plan", ent.PlanProductID)
	require.NotNil(t, ent.CurrentPeriodEnd)
	assert.True(t, user.Unlimited())
}

func TestRehydrateUser(t *testing.T) {
	original := newUser(t)
	original.RecordReading(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), time.UTC)

	restored := domain.RehydrateUser(
		original.ID(),
		original.Email(),
		original.DisplayName(),
		"cus_123",
		original.Entitlement(),
		original.QuotaPeriod(),
		original.QuotaUsed(),
		original.ReadingStreak(),
		original.LastReadingDate(),
		original.CreatedAt(),
		original.UpdatedAt(),
	)

	assert.Equal(t, original.ID(), restored.ID())
	assert.Equal(t, "cus_123", restored.StripeCustomerID())
	assert.Equal(t, 1, restored.QuotaUsed())
	assert.Equal(t, 1, restored.ReadingStreak())
	assert.Empty(t, restored.DomainEvents())
}
