package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/identity/domain"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/outbox"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type txKey struct{}

func txContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, "tx")
}

func TestRegisterUserHandler_Handle(t *testing.T) {
	t.Run("registers a new user", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)

		handler := NewRegisterUserHandler(userRepo, outboxRepo, uow, nil)

		ctx := context.Background()
		txCtx := txContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		userRepo.On("FindByEmail", txCtx, "luna@example.com").Return(nil, domain.ErrUserNotFound)
		userRepo.On("Save", txCtx, mock.AnythingOfType("*domain.User")).Return(nil)
		outboxRepo.On("Save", txCtx, mock.MatchedBy(func(msg *outbox.Message) bool {
			return msg.RoutingKey == "identity.user.registered"
		})).Return(nil)

		result, err := handler.Handle(ctx, RegisterUserCommand{
			Email:       "Luna@Example.com",
			DisplayName: "Luna",
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.UserID)
		assert.Equal(t, "luna@example.com", result.Email)
		assert.Equal(t, "Luna", result.DisplayName)
		userRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)

		handler := NewRegisterUserHandler(userRepo, outboxRepo, uow, nil)

		ctx := context.Background()
		txCtx := txContext(ctx)

		existing, err := domain.NewUser("luna@example.com", "Luna")
		require.NoError(t, err)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		userRepo.On("FindByEmail", txCtx, "luna@example.com").Return(existing, nil)

		_, err = handler.Handle(ctx, RegisterUserCommand{Email: "luna@example.com"})

		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		uow.AssertExpectations(t)
	})

	t.Run("rejects invalid email before any transaction", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)

		handler := NewRegisterUserHandler(userRepo, outboxRepo, uow, nil)

		_, err := handler.Handle(context.Background(), RegisterUserCommand{Email: "not-an-email"})

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
		outboxRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
