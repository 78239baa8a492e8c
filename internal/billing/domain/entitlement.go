package domain

// FreeMonthlyQuota is the number of readings a non-subscribed user may
// generate per calendar month.
const FreeMonthlyQuota = 3

// Unlimited reports whether the status grants unlimited readings.
func Unlimited(status SubscriptionStatus) bool {
	return status == SubscriptionActive || status == SubscriptionTrialing
}

// WithinQuota reports whether a non-unlimited user may generate another
// reading given their usage this period.
func WithinQuota(used int) bool {
	return used < FreeMonthlyQuota
}
