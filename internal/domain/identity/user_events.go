package identity

import (
	"github.com/adfinitum/backend/internal/domain/shared"
)

// AggregateTypeUser is the aggregate type for user events
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered         = "UserRegistered"
	EventTypePasswordResetRequested = "PasswordResetRequested"
	EventTypePasswordResetCompleted = "PasswordResetCompleted"
)

// UserRegisteredEvent is published when an account signs up
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Role:            user.Role,
	}
}

// PasswordResetRequestedEvent is published after a reset link is issued
type PasswordResetRequestedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewPasswordResetRequestedEvent creates a new PasswordResetRequestedEvent
func NewPasswordResetRequestedEvent(user *User) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePasswordResetRequested, AggregateTypeUser, user.ID),
		Email:           user.Email,
	}
}

// PasswordResetCompletedEvent is published when a reset link is consumed
type PasswordResetCompletedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewPasswordResetCompletedEvent creates a new PasswordResetCompletedEvent
func NewPasswordResetCompletedEvent(user *User) *PasswordResetCompletedEvent {
	return &PasswordResetCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePasswordResetCompleted, AggregateTypeUser, user.ID),
		Email:           user.Email,
	}
}
