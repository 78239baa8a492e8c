package domain

import "time"

// ProcessedEvent records a webhook event ID that has already been applied.
// The set is append-only; a bounded retention job may purge old entries.
type ProcessedEvent struct {
	EventID     string
	EventType   string
	ProcessedAt time.Time
}
