// Package domain holds the user aggregate. A user carries its entitlement
// state (subscription status, free-tier quota usage) and reading streak;
// both are mutated only through aggregate methods so the quota and streak
// invariants stay in one place.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	billing "github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	shared "github.com/Gzeu/tarot-reading-app/internal/shared/domain"
)

// Identity errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// Layout strings for the stored calendar fields.
const (
	dateLayout   = "2006-01-02"
	periodLayout = "2006-01"
)

// EntitlementState is the billing-derived portion of a user. It is mutated
// only by the webhook pipeline and checkout completion.
type EntitlementState struct {
	Status           billing.SubscriptionStatus
	SubscriptionID   string
	PlanProductID    string
	CurrentPeriodEnd *time.Time
}

// User is the aggregate root for identity, entitlement and usage state.
type User struct {
	shared.BaseAggregateRoot
	email            string
	displayName      string
	stripeCustomerID string
	entitlement      EntitlementState
	quotaPeriod      string // YYYY-MM of the current usage window
	quotaUsed        int
	readingStreak    int
	lastReadingDate  string // YYYY-MM-DD in the reference location
}

// NewUser creates a new user with no subscription.
func NewUser(email, displayName string) (*User, error) {
	addr, err := NewEmail(email)
	if err != nil {
		return nil, err
	}

	var name string
	if strings.TrimSpace(displayName) != "" {
		n, err := NewName(displayName)
		if err != nil {
			return nil, err
		}
		name = n.String()
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		email:             addr.String(),
		displayName:       name,
		entitlement:       EntitlementState{Status: billing.SubscriptionNone},
	}

	user.AddDomainEvent(NewUserRegistered(user))

	return user, nil
}

// RehydrateUser recreates a user from persisted state.
func RehydrateUser(
	id uuid.UUID,
	email, displayName, stripeCustomerID string,
	entitlement EntitlementState,
	quotaPeriod string,
	quotaUsed int,
	readingStreak int,
	lastReadingDate string,
	createdAt, updatedAt time.Time,
) *User {
	if entitlement.Status == "" {
		entitlement.Status = billing.SubscriptionNone
	}
	return &User{
		BaseAggregateRoot: shared.RehydrateBaseAggregateRoot(
			shared.RehydrateBaseEntity(id, createdAt, updatedAt),
		),
		email:            email,
		displayName:      displayName,
		stripeCustomerID: stripeCustomerID,
		entitlement:      entitlement,
		quotaPeriod:      quotaPeriod,
		quotaUsed:        quotaUsed,
		readingStreak:    readingStreak,
		lastReadingDate:  lastReadingDate,
	}
}

func (u *User) Email() string                 { return u.email }
func (u *User) DisplayName() string           { return u.displayName }
func (u *User) StripeCustomerID() string      { return u.stripeCustomerID }
func (u *User) Entitlement() EntitlementState { return u.entitlement }
func (u *User) QuotaPeriod() string           { return u.quotaPeriod }
func (u *User) QuotaUsed() int                { return u.quotaUsed }
func (u *User) ReadingStreak() int            { return u.readingStreak }
func (u *User) LastReadingDate() string       { return u.lastReadingDate }

// Unlimited reports whether the user's subscription grants unlimited
// readings.
func (u *User) Unlimited() bool {
	return billing.Unlimited(u.entitlement.Status)
}

// SetStripeCustomerID records the processor customer reference.
func (u *User) SetStripeCustomerID(id string) {
	if id != "" && u.stripeCustomerID != id {
		u.stripeCustomerID = id
		u.Touch()
	}
}

// SetDisplayName updates the display name.
func (u *User) SetDisplayName(name string) {
	u.displayName = strings.TrimSpace(name)
	u.Touch()
}

// CanGenerateReading checks the entitlement policy for one more reading at
// the given instant. Returns ErrQuotaExceeded (wrapped) when the free-tier
// quota for the current calendar month is spent.
func (u *User) CanGenerateReading(now time.Time, loc *time.Location) error {
	if u.Unlimited() {
		return nil
	}

	used := u.quotaUsed
	if u.quotaPeriod != currentPeriod(now, loc) {
		// Window rolled over; usage resets.
		used = 0
	}
	if !billing.WithinQuota(used) {
		return fmt.Errorf("used %d of %d free readings this month: %w",
			used, billing.FreeMonthlyQuota, billing.ErrQuotaExceeded)
	}
	return nil
}

// QuotaUsedInPeriod reports the usage counter as of now, accounting for a
// quota window that may have rolled over since the last recorded reading.
func (u *User) QuotaUsedInPeriod(now time.Time, loc *time.Location) int {
	if u.quotaPeriod != currentPeriod(now, loc) {
		return 0
	}
	return u.quotaUsed
}

// RecordReading applies the usage and streak bookkeeping for one persisted
// reading. Must be called inside the same transaction that saves the
// reading, after CanGenerateReading passed under a row lock.
func (u *User) RecordReading(now time.Time, loc *time.Location) {
	today := now.In(loc).Format(dateLayout)

	if !u.Unlimited() {
		period := currentPeriod(now, loc)
		if u.quotaPeriod != period {
			u.quotaPeriod = period
			u.quotaUsed = 0
		}
		u.quotaUsed++
	}

	u.updateStreak(today)
	u.lastReadingDate = today
	u.Touch()
}

// updateStreak advances the streak for a reading on the given date:
// unchanged for a second reading the same day, +1 when the last reading was
// exactly yesterday, reset to 1 otherwise.
func (u *User) updateStreak(today string) {
	if u.lastReadingDate == today {
		return
	}
	if u.readingStreak > 0 && u.lastReadingDate != "" {
		last, err := time.Parse(dateLayout, u.lastReadingDate)
		if err == nil {
			cur, _ := time.Parse(dateLayout, today)
			if last.AddDate(0, 0, 1).Equal(cur) {
				u.readingStreak++
				return
			}
		}
	}
	u.readingStreak = 1
}

// ApplySubscription updates the entitlement state from a subscription after
// a verified transition.
func (u *User) ApplySubscription(sub *billing.Subscription) {
	u.entitlement = EntitlementState{
		Status:           sub.Status,
		SubscriptionID:   sub.ID,
		PlanProductID:    sub.ProductID,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}
	u.Touch()
}

func currentPeriod(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(periodLayout)
}
