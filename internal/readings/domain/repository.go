package domain

import (
	"context"

	"github.com/google/uuid"
)

// ReadingRepository defines access for reading persistence. Save persists
// the reading and any unsaved journal entries; callers must not assume the
// reading persisted when Save errors.
type ReadingRepository interface {
	Save(ctx context.Context, reading *Reading) error
	FindByID(ctx context.Context, id uuid.UUID) (*Reading, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Reading, error)

	// FindDailyByUserDate returns the user's reading for the given spread
	// and calendar date, or ErrReadingNotFound. Backs daily-card pinning.
	FindDailyByUserDate(ctx context.Context, userID uuid.UUID, spreadID, readingDate string) (*Reading, error)
}
