package identity

import "github.com/adfinitum/backend/internal/domain/shared"

// Identity application errors
var (
	ErrPasswordMismatch   = shared.NewFieldError("password", "Passwords do not match.")
	ErrEmailTaken         = shared.ErrAlreadyExists.WithMessage("A user with this email already exists.").WithField("email")
	ErrInvalidCredentials = shared.ErrUnauthorized.WithMessage("Invalid credentials.")
	ErrRefreshRequired    = shared.NewFieldError("refresh", "Refresh token required.")
	ErrInvalidRefresh     = shared.ErrInvalidInput.WithMessage("Invalid or expired token.")
	ErrRefreshRejected    = shared.ErrUnauthorized.WithMessage("Token is invalid or expired")
	ErrUnknownEmail       = shared.NewFieldError("email", "No account with this email.")
	ErrInvalidResetLink   = shared.ErrInvalidInput.WithMessage("Invalid reset link.")
	ErrResetLinkExpired   = shared.ErrInvalidInput.WithMessage("Reset link is invalid or expired.")
	ErrUserNotFound       = shared.ErrNotFound.WithMessage("User not found")
)
