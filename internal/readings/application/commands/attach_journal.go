package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
	sharedApplication "github.com/Gzeu/tarot-reading-app/internal/shared/application"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/outbox"
)

// AttachJournalCommand adds a journal entry to a reading.
type AttachJournalCommand struct {
	ReadingID  uuid.UUID
	UserID     uuid.UUID
	Notes      string
	Reflection string
}

// AttachJournalResult identifies the created journal entry.
type AttachJournalResult struct {
	JournalID uuid.UUID
}

// AttachJournalHandler handles the AttachJournalCommand.
type AttachJournalHandler struct {
	readingRepo domain.ReadingRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
}

// NewAttachJournalHandler creates a new AttachJournalHandler.
func NewAttachJournalHandler(readingRepo domain.ReadingRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *AttachJournalHandler {
	return &AttachJournalHandler{readingRepo: readingRepo, outboxRepo: outboxRepo, uow: uow}
}

// Handle executes the AttachJournalCommand.
func (h *AttachJournalHandler) Handle(ctx context.Context, cmd AttachJournalCommand) (*AttachJournalResult, error) {
	var result *AttachJournalResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		reading, err := h.readingRepo.FindByID(txCtx, cmd.ReadingID)
		if err != nil {
			return err
		}
		if reading.UserID() != cmd.UserID {
			return ErrNotOwner
		}

		entry, err := reading.AttachJournal(cmd.Notes, cmd.Reflection)
		if err != nil {
			return err
		}

		if err := h.readingRepo.Save(txCtx, reading); err != nil {
			return err
		}

		events := reading.DomainEvents()
		msgs := make([]*outbox.Message, 0, len(events))
		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return err
		}
		reading.ClearDomainEvents()

		result = &AttachJournalResult{JournalID: entry.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
