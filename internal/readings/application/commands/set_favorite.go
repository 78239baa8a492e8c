package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
	sharedApplication "github.com/Gzeu/tarot-reading-app/internal/shared/application"
)

// SetFavoriteCommand toggles the favorite flag on a reading.
type SetFavoriteCommand struct {
	ReadingID uuid.UUID
	UserID    uuid.UUID
	Favorite  bool
}

// SetFavoriteHandler handles the SetFavoriteCommand.
type SetFavoriteHandler struct {
	readingRepo domain.ReadingRepository
	uow         sharedApplication.UnitOfWork
}

// NewSetFavoriteHandler creates a new SetFavoriteHandler.
func NewSetFavoriteHandler(readingRepo domain.ReadingRepository, uow sharedApplication.UnitOfWork) *SetFavoriteHandler {
	return &SetFavoriteHandler{readingRepo: readingRepo, uow: uow}
}

// Handle executes the SetFavoriteCommand.
func (h *SetFavoriteHandler) Handle(ctx context.Context, cmd SetFavoriteCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		reading, err := h.readingRepo.FindByID(txCtx, cmd.ReadingID)
		if err != nil {
			return err
		}
		if reading.UserID() != cmd.UserID {
			return ErrNotOwner
		}

		reading.SetFavorite(cmd.Favorite)
		return h.readingRepo.Save(txCtx, reading)
	})
}
