package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/adfinitum/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the coarse permission class of a user
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

const (
	bcryptCost             = 12
	minPasswordLength      = 8
	minResetPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is an account identified by its email address.
// It is the aggregate root for identity operations.
type User struct {
	shared.BaseAggregateRoot
	Email        string
	FullName     string
	Phone        string
	Address      string
	City         string
	PostalCode   string
	Role         Role
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	PasswordHash string
	LastLoginAt  *time.Time
}

// NewUser creates an active customer account
func NewUser(email, fullName, password string) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewFieldError("full_name", "This field is required.")
	}
	if len(fullName) > 255 {
		return nil, shared.NewFieldError("full_name", "Ensure this field has no more than 255 characters.")
	}
	if err := validatePassword(password, minPasswordLength); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		FullName:          fullName,
		Role:              RoleCustomer,
		IsActive:          true,
		PasswordHash:      hash,
	}
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// NewSuperuser creates an admin account with staff and superuser flags set
func NewSuperuser(email, fullName, password string) (*User, error) {
	user, err := NewUser(email, fullName, password)
	if err != nil {
		return nil, err
	}
	user.Role = RoleAdmin
	user.IsStaff = true
	user.IsSuperuser = true
	return user, nil
}

// DateJoined returns when the account was created
func (u *User) DateJoined() time.Time {
	return u.CreatedAt
}

// UpdateProfile updates the self-service profile fields
func (u *User) UpdateProfile(fullName, phone, address, city, postalCode string) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return shared.NewFieldError("full_name", "This field may not be blank.")
	}
	if len(phone) > 20 {
		return shared.NewFieldError("phone", "Ensure this field has no more than 20 characters.")
	}
	if len(postalCode) > 20 {
		return shared.NewFieldError("postal_code", "Ensure this field has no more than 20 characters.")
	}

	u.FullName = fullName
	u.Phone = strings.TrimSpace(phone)
	u.Address = strings.TrimSpace(address)
	u.City = strings.TrimSpace(city)
	u.PostalCode = strings.TrimSpace(postalCode)
	u.Touch()
	return nil
}

// SetPermissions changes the role and access flags (admin only)
func (u *User) SetPermissions(role Role, isActive, isStaff, isSuperuser bool) error {
	if !role.IsValid() {
		return shared.NewFieldError("role", "\""+string(role)+"\" is not a valid choice.")
	}
	u.Role = role
	u.IsActive = isActive
	u.IsStaff = isStaff
	u.IsSuperuser = isSuperuser
	u.Touch()
	return nil
}

// SetPassword replaces the password after validating it against the signup policy
func (u *User) SetPassword(password string) error {
	return u.setPassword(password, minPasswordLength)
}

// ResetPassword replaces the password during the reset flow
func (u *User) ResetPassword(password string) error {
	if err := u.setPassword(password, minResetPasswordLength); err != nil {
		return err
	}
	u.AddDomainEvent(NewPasswordResetCompletedEvent(u))
	return nil
}

func (u *User) setPassword(password string, minLen int) error {
	if err := validatePassword(password, minLen); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// CanLogin returns true if the account is allowed to authenticate
func (u *User) CanLogin() bool {
	return u.IsActive
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsStaffUser reports whether the user has the staff role
func (u *User) IsStaffUser() bool { return u.Role == RoleStaff }

// IsCustomer reports whether the user has the customer role
func (u *User) IsCustomer() bool { return u.Role == RoleCustomer }

// CanManage reports whether the user may use admin endpoints
func (u *User) CanManage() bool {
	return u.IsActive && (u.IsStaff || u.IsSuperuser || u.Role == RoleAdmin)
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewFieldError("email", "This field is required.")
	}
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return shared.NewFieldError("email", "Enter a valid email address.")
	}
	return nil
}

func validatePassword(password string, minLen int) error {
	if len(password) < minLen {
		return shared.NewFieldError("password", "This password is too short.")
	}
	if len(password) > 128 {
		return shared.NewFieldError("password", "This password is too long.")
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return shared.NewFieldError("password", "This password is entirely numeric.")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
