package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListReadingsQuery fetches a user's readings newest-first.
type ListReadingsQuery struct {
	UserID uuid.UUID
	Limit  int
	Offset int
}

// ListReadingsHandler handles the ListReadingsQuery.
type ListReadingsHandler struct {
	readingRepo domain.ReadingRepository
}

// NewListReadingsHandler creates a new ListReadingsHandler.
func NewListReadingsHandler(readingRepo domain.ReadingRepository) *ListReadingsHandler {
	return &ListReadingsHandler{readingRepo: readingRepo}
}

// Handle executes the ListReadingsQuery.
func (h *ListReadingsHandler) Handle(ctx context.Context, query ListReadingsQuery) ([]ReadingView, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	readings, err := h.readingRepo.ListByUser(ctx, query.UserID, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]ReadingView, len(readings))
	for i, reading := range readings {
		views[i] = NewReadingView(reading)
	}
	return views, nil
}
