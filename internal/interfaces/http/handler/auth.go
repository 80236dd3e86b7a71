package handler

import (
	"context"

	"github.com/adfinitum/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthService is the account API used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, input identity.RegisterInput) (*identity.AuthResult, error)
	Login(ctx context.Context, input identity.LoginInput) (*identity.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*identity.TokenResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*identity.UserResponse, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input identity.ProfileInput) (*identity.UserResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, input identity.PasswordResetConfirmInput) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
//
//	@Summary		Register a customer account
//	@Tags			auth
//	@ID				register
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Signup form"
//	@Success		201		{object}	APIResponse[identity.AuthResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), identity.RegisterInput{
		Email:      req.Email,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Password:   req.Password,
		Password2:  req.Password2,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login godoc
//
//	@Summary		User login
//	@Description	Authenticate with email and password
//	@Tags			auth
//	@ID				login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login credentials"
//	@Success		200		{object}	APIResponse[identity.AuthResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
//
//	@Summary		Logout
//	@Description	Revoke the given refresh token
//	@Tags			auth
//	@ID				logout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	APIResponse[dto.MessageData]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), req.Refresh); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Successfully logged out.")
}

// RefreshToken godoc
//
//	@Summary		Refresh access token
//	@Tags			auth
//	@ID				refreshToken
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	APIResponse[identity.TokenResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/auth/token/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Refresh == "" {
		h.HandleError(c, identity.ErrRefreshRequired)
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Me godoc
//
//	@Summary		Current user profile
//	@Tags			auth
//	@ID				getMe
//	@Produce		json
//	@Success		200	{object}	APIResponse[identity.UserResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateMe godoc
//
//	@Summary		Update current user profile
//	@Description	Email and role are read-only
//	@Tags			auth
//	@ID				updateMe
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ProfileRequest	true	"Profile fields"
//	@Success		200		{object}	APIResponse[identity.UserResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/auth/me [put]
//	@Router			/auth/me [patch]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateMe(c.Request.Context(), userID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// RequestPasswordReset godoc
//
//	@Summary		Request a password reset link
//	@Tags			auth
//	@ID				requestPasswordReset
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PasswordResetRequest	true	"Account email"
//	@Success		200		{object}	APIResponse[dto.MessageData]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Password reset link sent.")
}

// ConfirmPasswordReset godoc
//
//	@Summary		Set a new password from a reset link
//	@Tags			auth
//	@ID				confirmPasswordReset
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PasswordResetConfirmRequest	true	"Reset link data and new password"
//	@Success		200		{object}	APIResponse[dto.MessageData]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if !h.bindJSON(c, &req) {
		return
	}
	err := h.authService.ConfirmPasswordReset(c.Request.Context(), identity.PasswordResetConfirmInput{
		UID:      req.UID,
		Token:    req.Token,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Password has been reset.")
}

func (r ProfileRequest) toInput() identity.ProfileInput {
	return identity.ProfileInput{
		FullName:   r.FullName,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		PostalCode: r.PostalCode,
	}
}
