package identity

import (
	"time"

	"github.com/adfinitum/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterInput contains the signup form
type RegisterInput struct {
	Email      string
	FullName   string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Password   string
	Password2  string
}

// LoginInput contains the credentials for login
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by register and login
type AuthResult struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	Role             string    `json:"role"`
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// TokenResult is returned by token refresh
type TokenResult struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// ProfileInput carries a full (PUT) or partial (PATCH) profile update.
// Nil fields keep their current value.
type ProfileInput struct {
	FullName   *string
	Phone      *string
	Address    *string
	City       *string
	PostalCode *string
}

// AdminUpdateInput is the admin-side user update
type AdminUpdateInput struct {
	ProfileInput
	Role        *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// UserListFilter contains the admin user list query
type UserListFilter struct {
	Search   string
	Role     string
	IsActive *bool
	Page     int
	PageSize int
}

// PasswordResetConfirmInput is the second step of the reset flow
type PasswordResetConfirmInput struct {
	UID      string
	Token    string
	Password string
}

// UserResponse is the serialized user profile
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	PostalCode  string    `json:"postal_code"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	DateJoined  time.Time `json:"date_joined"`
}

// UserListItem is the compact row used by the admin list
type UserListItem struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

// UserListResult is a page of users
type UserListResult struct {
	Users    []UserListItem
	Total    int64
	Page     int
	PageSize int
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		Address:     u.Address,
		City:        u.City,
		PostalCode:  u.PostalCode,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		DateJoined:  u.DateJoined(),
	}
}

func toListItem(u *identity.User) UserListItem {
	return UserListItem{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       string(u.Role),
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined(),
	}
}

func applyProfile(u *identity.User, in ProfileInput) error {
	pick := func(v *string, current string) string {
		if v == nil {
			return current
		}
		return *v
	}
	return u.UpdateProfile(
		pick(in.FullName, u.FullName),
		pick(in.Phone, u.Phone),
		pick(in.Address, u.Address),
		pick(in.City, u.City),
		pick(in.PostalCode, u.PostalCode),
	)
}
