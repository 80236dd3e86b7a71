package handler

import "github.com/adfinitum/backend/internal/interfaces/http/dto"

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the signup form
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email,max=254"`
	FullName   string `json:"full_name" binding:"required,max=150"`
	Phone      string `json:"phone" binding:"omitempty,max=20"`
	Address    string `json:"address" binding:"omitempty,max=255"`
	City       string `json:"city" binding:"omitempty,max=100"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=20"`
	Password   string `json:"password" binding:"required,min=8,max=128"`
	Password2  string `json:"password2" binding:"required"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token for refresh and logout
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// ProfileRequest updates the caller's profile. Absent fields are unchanged.
type ProfileRequest struct {
	FullName   *string `json:"full_name" binding:"omitempty,max=150"`
	Phone      *string `json:"phone" binding:"omitempty,max=20"`
	Address    *string `json:"address" binding:"omitempty,max=255"`
	City       *string `json:"city" binding:"omitempty,max=100"`
	PostalCode *string `json:"postal_code" binding:"omitempty,max=20"`
}

// PasswordResetRequest starts the reset flow
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest completes the reset flow
type PasswordResetConfirmRequest struct {
	UID      string `json:"uidb64" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminUserUpdateRequest is the admin-side user update
type AdminUserUpdateRequest struct {
	ProfileRequest
	Role        *string `json:"role" binding:"omitempty,oneof=customer admin staff"`
	IsActive    *bool   `json:"is_active"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// UserListQuery is the admin user list query
type UserListQuery struct {
	dto.PageQuery
	Search string `form:"search"`
	Role   string `form:"role"`
}
