package queries

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
)

// ErrNotOwner is returned when a user addresses another user's reading.
var ErrNotOwner = errors.New("user does not own this reading")

// GetReadingQuery fetches one reading by ID.
type GetReadingQuery struct {
	ReadingID uuid.UUID
	UserID    uuid.UUID
}

// GetReadingHandler handles the GetReadingQuery.
type GetReadingHandler struct {
	readingRepo domain.ReadingRepository
}

// NewGetReadingHandler creates a new GetReadingHandler.
func NewGetReadingHandler(readingRepo domain.ReadingRepository) *GetReadingHandler {
	return &GetReadingHandler{readingRepo: readingRepo}
}

// Handle executes the GetReadingQuery.
func (h *GetReadingHandler) Handle(ctx context.Context, query GetReadingQuery) (*ReadingView, error) {
	reading, err := h.readingRepo.FindByID(ctx, query.ReadingID)
	if err != nil {
		return nil, err
	}
	if reading.UserID() != query.UserID {
		// Hide other users' readings entirely.
		return nil, domain.ErrReadingNotFound
	}

	view := NewReadingView(reading)
	return &view, nil
}
