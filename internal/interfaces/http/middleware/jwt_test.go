package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adfinitum/backend/internal/infrastructure/auth"
	"github.com/adfinitum/backend/internal/infrastructure/config"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role string, canManage bool) (string, auth.Subject) {
	t.Helper()
	subject := auth.Subject{
		UserID:    uuid.New(),
		Email:     role + "@example.com",
		Role:      role,
		CanManage: canManage,
	}
	pair, err := svc.GenerateTokenPair(subject)
	require.NoError(t, err)
	return pair.AccessToken, subject
}

func serve(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return resp.Error.Code
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	token, subject := issueToken(t, svc, "customer", false)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/test", func(c *gin.Context) {
		require.NotNil(t, GetJWTClaims(c))
		assert.Equal(t, subject.UserID.String(), GetJWTUserID(c))
		assert.Equal(t, subject.UserID, *GetJWTUserUUID(c))
		assert.Equal(t, subject.UserID.String(), c.GetString("user_id"))
		assert.False(t, CanManage(c))
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, token).Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService()
	other := auth.NewJWTService(config.JWTConfig{
		Secret:                 "another-secret-key-at-least-32-chars",
		RefreshSecret:          "another-refresh-secret-key-32-chars",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "test-issuer",
	})
	foreign, _ := issueToken(t, other, "customer", false)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"garbage token", "not-a-jwt", dto.ErrCodeTokenInvalid},
		{"wrong signature", foreign, dto.ErrCodeTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTAuthMiddleware_RefreshTokenIsNotAccess(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(auth.Subject{UserID: uuid.New(), Role: "customer"})
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	svc := newTestJWTService()
	ctx := context.Background()

	t.Run("revoked jti", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		token, _ := issueToken(t, svc, "customer", false)
		claims, err := svc.ValidateAccessToken(token)
		require.NoError(t, err)
		require.NoError(t, blacklist.AddToBlacklist(ctx, claims.ID, time.Hour))

		router := gin.New()
		router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist}))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(router, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
	})

	t.Run("all user tokens invalidated", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		token, subject := issueToken(t, svc, "customer", false)
		require.NoError(t, blacklist.AddUserTokensToBlacklist(ctx, subject.UserID.String(), time.Hour))

		router := gin.New()
		router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist}))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(router, token)
		assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
	})
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService()
	token, _ := issueToken(t, svc, "customer", false)

	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(DefaultJWTConfig(svc)))
	router.GET("/test", func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.String(http.StatusOK, "user")
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	w := serve(router, "")
	assert.Equal(t, "anonymous", w.Body.String())

	w = serve(router, token)
	assert.Equal(t, "user", w.Body.String())

	w = serve(router, "broken")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Every permission class against every kind of caller
func TestPermissionClasses(t *testing.T) {
	svc := newTestJWTService()
	customer, _ := issueToken(t, svc, "customer", false)
	staff, _ := issueToken(t, svc, "staff", true)
	admin, _ := issueToken(t, svc, "admin", true)

	guards := map[string][]gin.HandlerFunc{
		PermissionAllowAny:      nil,
		PermissionAuthenticated: {RequireAuthenticated()},
		PermissionAdmin:         {RequireAdmin()},
	}

	tests := []struct {
		class  string
		caller string
		token  string
		status int
	}{
		{PermissionAllowAny, "anonymous", "", http.StatusOK},
		{PermissionAllowAny, "customer", customer, http.StatusOK},
		{PermissionAllowAny, "admin", admin, http.StatusOK},
		{PermissionAuthenticated, "anonymous", "", http.StatusUnauthorized},
		{PermissionAuthenticated, "customer", customer, http.StatusOK},
		{PermissionAuthenticated, "admin", admin, http.StatusOK},
		{PermissionAdmin, "anonymous", "", http.StatusUnauthorized},
		{PermissionAdmin, "customer", customer, http.StatusForbidden},
		{PermissionAdmin, "staff", staff, http.StatusOK},
		{PermissionAdmin, "admin", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.class+"/"+tt.caller, func(t *testing.T) {
			router := gin.New()
			router.Use(OptionalJWTAuthMiddleware(DefaultJWTConfig(svc)))
			handlers := append(guards[tt.class], func(c *gin.Context) { c.Status(http.StatusOK) })
			router.GET("/test", handlers...)

			w := serve(router, tt.token)
			assert.Equal(t, tt.status, w.Code)
			switch tt.status {
			case http.StatusUnauthorized:
				assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))
			case http.StatusForbidden:
				assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))
			}
		})
	}
}

func TestGuestSession(t *testing.T) {
	svc := newTestJWTService()
	token, _ := issueToken(t, svc, "customer", false)

	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(DefaultJWTConfig(svc)), GuestSession())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionID(c))
	})

	t.Run("generated for anonymous caller", func(t *testing.T) {
		w := serve(router, "")
		sessionID := w.Header().Get(SessionIDHeader)
		_, err := uuid.Parse(sessionID)
		assert.NoError(t, err)
		assert.Equal(t, sessionID, w.Body.String())
	})

	t.Run("supplied id kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(SessionIDHeader, "guest_abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "guest_abc-123", w.Body.String())
		assert.Equal(t, "guest_abc-123", w.Header().Get(SessionIDHeader))
	})

	t.Run("malformed id replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(SessionIDHeader, strings.Repeat("x", MaxSessionIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Len(t, w.Body.String(), 36)
	})

	t.Run("authenticated caller gets none", func(t *testing.T) {
		w := serve(router, token)
		assert.Empty(t, w.Body.String())
		assert.Empty(t, w.Header().Get(SessionIDHeader))
	})
}
