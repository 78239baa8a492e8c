// Package commands holds the write-side handlers for identity.
package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/identity/domain"
	sharedApplication "github.com/Gzeu/tarot-reading-app/internal/shared/application"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/outbox"
)

// RegisterUserCommand contains the data needed to register a user.
type RegisterUserCommand struct {
	Email       string
	DisplayName string
}

// RegisterUserResult contains the registered user.
type RegisterUserResult struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	userRepo   domain.UserRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(
	userRepo domain.UserRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *RegisterUserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterUserHandler{
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
	}
}

// Handle executes the RegisterUserCommand.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	var result *RegisterUserResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		_, err := h.userRepo.FindByEmail(txCtx, email.String())
		if err == nil {
			return domain.ErrEmailTaken
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		user, err := domain.NewUser(email.String(), cmd.DisplayName)
		if err != nil {
			return err
		}

		if err := h.userRepo.Save(txCtx, user); err != nil {
			return err
		}

		for _, event := range user.DomainEvents() {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			if err := h.outboxRepo.Save(txCtx, msg); err != nil {
				return err
			}
		}
		user.ClearDomainEvents()

		result = &RegisterUserResult{
			UserID:      user.ID(),
			Email:       user.Email(),
			DisplayName: user.DisplayName(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("user registered", "user_id", result.UserID, "email", result.Email)
	return result, nil
}
