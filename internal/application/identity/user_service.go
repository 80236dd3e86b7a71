package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/adfinitum/backend/internal/domain/identity"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles admin user management
type UserService struct {
	users  identity.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// List returns users newest first
func (s *UserService) List(ctx context.Context, filter UserListFilter) (*UserListResult, error) {
	query := identity.UserFilter{Filter: shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Active:   filter.IsActive,
	}}
	query.Normalize()
	if filter.Role != "" {
		role := identity.Role(filter.Role)
		if !role.IsValid() {
			return nil, shared.NewFieldError("role", "\""+filter.Role+"\" is not a valid choice.")
		}
		query.Role = &role
	}

	users, total, err := s.users.FindAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	items := make([]UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, toListItem(u))
	}
	return &UserListResult{Users: items, Total: total, Page: query.Page, PageSize: query.PageSize}, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Update changes profile fields and permissions
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input AdminUpdateInput) (*UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(user, input.ProfileInput); err != nil {
		return nil, err
	}

	role, active, staff, super := user.Role, user.IsActive, user.IsStaff, user.IsSuperuser
	if input.Role != nil {
		role = identity.Role(*input.Role)
	}
	if input.IsActive != nil {
		active = *input.IsActive
	}
	if input.IsStaff != nil {
		staff = *input.IsStaff
	}
	if input.IsSuperuser != nil {
		super = *input.IsSuperuser
	}
	if err := user.SetPermissions(role, active, staff, super); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.logger.Info("User updated by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.Bool("is_active", user.IsActive))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// EnsureSuperuser creates the bootstrap admin when no account uses email.
// It reports whether an account was created.
func (s *UserService) EnsureSuperuser(ctx context.Context, email, fullName, password string) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return false, nil
	}
	admin, err := identity.NewSuperuser(email, fullName, password)
	if err != nil {
		return false, err
	}
	admin.ClearDomainEvents()
	if err := s.users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("Seeded superuser", zap.String("email", admin.Email))
	return true, nil
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
