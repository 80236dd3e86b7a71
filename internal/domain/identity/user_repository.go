package identity

import (
	"context"

	"github.com/adfinitum/backend/internal/domain/shared"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail matches case-insensitively
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	CountByRole(ctx context.Context, role Role) (int64, error)
}

// UserFilter narrows a user listing. Search matches email or full name.
type UserFilter struct {
	shared.Filter
	Role *Role
}
