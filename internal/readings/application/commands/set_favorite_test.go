package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
)

func storedReading(t *testing.T, userID uuid.UUID) *domain.Reading {
	t.Helper()
	now := time.Now().UTC()
	return domain.RehydrateReading(
		uuid.New(), userID, "three-card", "What lies ahead?",
		[]int{5, 40, 12}, []bool{true, false, true},
		"", false, "2026-03-10", now, now,
	)
}

func TestSetFavoriteHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("marks a reading as favorite", func(t *testing.T) {
		readingRepo := new(mockReadingRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetFavoriteHandler(readingRepo, uow)

		ctx := context.Background()
		txCtx := txContext(ctx)
		reading := storedReading(t, userID)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		readingRepo.On("FindByID", txCtx, reading.ID()).Return(reading, nil)
		readingRepo.On("Save", txCtx, reading).Return(nil)

		err := handler.Handle(ctx, SetFavoriteCommand{
			ReadingID: reading.ID(),
			UserID:    userID,
			Favorite:  true,
		})

		require.NoError(t, err)
		assert.True(t, reading.IsFavorite())
		readingRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("rejects another user's reading", func(t *testing.T) {
		readingRepo := new(mockReadingRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetFavoriteHandler(readingRepo, uow)

		ctx := context.Background()
		txCtx := txContext(ctx)
		reading := storedReading(t, uuid.New())

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		readingRepo.On("FindByID", txCtx, reading.ID()).Return(reading, nil)

		err := handler.Handle(ctx, SetFavoriteCommand{
			ReadingID: reading.ID(),
			UserID:    userID,
			Favorite:  true,
		})

		assert.ErrorIs(t, err, ErrNotOwner)
		readingRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("propagates not found", func(t *testing.T) {
		readingRepo := new(mockReadingRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetFavoriteHandler(readingRepo, uow)

		ctx := context.Background()
		txCtx := txContext(ctx)
		readingID := uuid.New()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		readingRepo.On("FindByID", txCtx, readingID).Return(nil, domain.ErrReadingNotFound)

		err := handler.Handle(ctx, SetFavoriteCommand{
			ReadingID: readingID,
			UserID:    userID,
			Favorite:  true,
		})

		assert.ErrorIs(t, err, domain.ErrReadingNotFound)
	})
}
