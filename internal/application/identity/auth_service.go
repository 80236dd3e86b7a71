package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/identity"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/infrastructure/auth"
	"github.com/adfinitum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer is the part of auth.JWTService the auth flows need
type TokenIssuer interface {
	GenerateTokenPair(subject auth.Subject) (*auth.TokenPair, error)
	ValidateRefreshToken(token string) (*auth.Claims, error)
	RefreshTokenPair(refreshToken string) (*auth.TokenPair, *auth.Claims, error)
	GetRefreshTokenExpiration() time.Duration
}

// ResetTokens issues and verifies password reset tokens
type ResetTokens interface {
	Make(subject auth.ResetSubject) string
	Check(subject auth.ResetSubject, token string) error
}

// AuthServiceConfig contains settings for the auth flows
type AuthServiceConfig struct {
	// FrontendURL is the storefront base used in reset links
	FrontendURL string
}

// AuthService handles signup, login, token lifecycle and password reset
type AuthService struct {
	users     identity.UserRepository
	tokens    TokenIssuer
	blacklist auth.TokenBlacklist
	resets    ResetTokens
	mailer    appshared.Mailer
	events    shared.EventPublisher
	config    AuthServiceConfig
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.UserRepository,
	tokens TokenIssuer,
	blacklist auth.TokenBlacklist,
	resets ResetTokens,
	mailer appshared.Mailer,
	events shared.EventPublisher,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		resets:    resets,
		mailer:    mailer,
		events:    events,
		config:    config,
		logger:    logger,
	}
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "register")
	defer span.End()

	if input.Password != input.Password2 {
		return nil, ErrPasswordMismatch
	}

	user, err := identity.NewUser(input.Email, input.FullName, input.Password)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(user.FullName, input.Phone, input.Address, input.City, input.PostalCode); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	if err := s.users.Create(ctx, user); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create user: %w", err)
	}
	appshared.PublishEvents(ctx, s.events, s.logger, user)

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login verifies credentials and returns a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.CanLogin() || !user.VerifyPassword(input.Password) {
		s.logger.Warn("Rejected login", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	user.RecordLogin()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return s.issue(user)
}

// Logout revokes the given refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrRefreshRequired
	}
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefresh
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return fmt.Errorf("blacklist refresh token: %w", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Refresh rotates a refresh token into a new pair. The presented token is
// revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrRefreshRequired
	}
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshRejected
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return nil, fmt.Errorf("check user invalidation: %w", err)
		}
	}
	if revoked {
		return nil, ErrRefreshRejected
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrRefreshRejected
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil || !user.CanLogin() {
		return nil, ErrRefreshRejected
	}

	pair, _, err := s.tokens.RefreshTokenPair(refreshToken)
	if err != nil {
		return nil, ErrRefreshRejected
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
	}

	return &TokenResult{
		Access:           pair.AccessToken,
		Refresh:          pair.RefreshToken,
		AccessExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshExpiresAt: pair.RefreshTokenExpiresAt,
	}, nil
}

// Me returns the caller's profile
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateMe changes the caller's own profile. Email and role are read-only.
func (s *AuthService) UpdateMe(ctx context.Context, userID uuid.UUID, input ProfileInput) (*UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(user, input); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// RequestPasswordReset mails a reset link to the account owner
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrUnknownEmail
		}
		return fmt.Errorf("find user: %w", err)
	}

	token := s.resets.Make(resetSubject(user))
	link := s.resetLink(auth.EncodeUID(user.ID), token)
	body := fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password:\n\n%s\n\n"+
		"If you did not request a reset you can ignore this message.\n", user.FullName, link)

	if err := s.mailer.Send(ctx, user.Email, "Password reset", body); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	user.AddDomainEvent(identity.NewPasswordResetRequestedEvent(user))
	appshared.PublishEvents(ctx, s.events, s.logger, user)
	s.logger.Info("Password reset link sent", zap.String("user_id", user.ID.String()))
	return nil
}

// ConfirmPasswordReset sets a new password and revokes every token the
// user held before the reset
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, input PasswordResetConfirmInput) error {
	userID, err := auth.DecodeUID(input.UID)
	if err != nil {
		return ErrInvalidResetLink
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrInvalidResetLink
		}
		return fmt.Errorf("find user: %w", err)
	}
	if err := s.resets.Check(resetSubject(user), input.Token); err != nil {
		return ErrResetLinkExpired
	}

	if err := user.ResetPassword(input.Password); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.tokens.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke tokens after reset", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	appshared.PublishEvents(ctx, s.events, s.logger, user)
	return nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.tokens.GenerateTokenPair(auth.Subject{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		CanManage: user.CanManage(),
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &AuthResult{
		ID:               user.ID,
		Email:            user.Email,
		FullName:         user.FullName,
		Role:             string(user.Role),
		Access:           pair.AccessToken,
		Refresh:          pair.RefreshToken,
		AccessExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshExpiresAt: pair.RefreshTokenExpiresAt,
	}, nil
}

func (s *AuthService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) resetLink(uid, token string) string {
	q := url.Values{}
	q.Set("uid", uid)
	q.Set("token", token)
	return strings.TrimRight(s.config.FrontendURL, "/") + "/auth/reset-password?" + q.Encode()
}

func resetSubject(u *identity.User) auth.ResetSubject {
	return auth.ResetSubject{UserID: u.ID, PasswordHash: u.PasswordHash, LastLoginAt: u.LastLoginAt}
}
