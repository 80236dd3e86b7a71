package middleware

import (
	"regexp"

	"github.com/adfinitum/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionIDHeader carries the guest cart session in both directions
const SessionIDHeader = "X-Session-ID"

// SessionIDKey is the gin context key holding the resolved guest session
const SessionIDKey = logger.GinSessionIDKey

// MaxSessionIDLength matches the carts.session_id column
const MaxSessionIDLength = 64

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GuestSession resolves the X-Session-ID of anonymous callers. A missing or
// malformed header gets a fresh id. The id is echoed in the response so the
// client can keep it. Authenticated requests keep a supplied id but never
// get a generated one.
func GuestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionIDHeader)
		if !validSessionID(sessionID) {
			sessionID = ""
		}

		if sessionID == "" && !IsAuthenticated(c) {
			sessionID = uuid.NewString()
		}

		if sessionID != "" {
			c.Set(SessionIDKey, sessionID)
			c.Header(SessionIDHeader, sessionID)

			ctx, _ := logger.WithSessionID(c.Request.Context(), logger.FromContext(c.Request.Context()), sessionID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// GetSessionID returns the guest session resolved by GuestSession
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

func validSessionID(id string) bool {
	return id != "" && len(id) <= MaxSessionIDLength && sessionIDPattern.MatchString(id)
}
