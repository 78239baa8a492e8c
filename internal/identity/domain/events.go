package domain

import shared "github.com/Gzeu/tarot-reading-app/internal/shared/domain"

// UserRegistered is emitted when a new user is created.
type UserRegistered struct {
	shared.BaseEvent
	Email string `json:"email"`
}

// NewUserRegistered creates the registration event.
func NewUserRegistered(user *User) UserRegistered {
	return UserRegistered{
		BaseEvent: shared.NewBaseEvent(user.ID(), "user", "identity.user.registered"),
		Email:     user.Email(),
	}
}
