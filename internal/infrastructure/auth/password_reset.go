package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password reset errors
var (
	ErrInvalidResetUID   = errors.New("invalid reset uid")
	ErrInvalidResetToken = errors.New("reset token is invalid or expired")
)

// ResetSubject is the user state a reset token is bound to. Changing the
// password or logging in afterwards invalidates outstanding tokens.
type ResetSubject struct {
	UserID       uuid.UUID
	PasswordHash string
	LastLoginAt  *time.Time
}

// PasswordResetTokens issues and checks stateless password reset tokens
type PasswordResetTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewPasswordResetTokens creates a token generator signing with secret
func NewPasswordResetTokens(secret string, ttl time.Duration) *PasswordResetTokens {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PasswordResetTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// EncodeUID returns the base64url form of a user id used in reset links
func EncodeUID(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
}

// DecodeUID parses a uid produced by EncodeUID
func DecodeUID(uid string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uid, "="))
	if err != nil {
		return uuid.Nil, ErrInvalidResetUID
	}
	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidResetUID
	}
	return id, nil
}

// Make creates a token of the form "<unix-ts base36>-<hex hmac>"
func (t *PasswordResetTokens) Make(subject ResetSubject) string {
	ts := strconv.FormatInt(t.now().Unix(), 36)
	return ts + "-" + t.sign(subject, ts)
}

// Check verifies the token against the subject's current state
func (t *PasswordResetTokens) Check(subject ResetSubject, token string) error {
	ts, sig, ok := strings.Cut(token, "-")
	if !ok || ts == "" || sig == "" {
		return ErrInvalidResetToken
	}
	issued, err := strconv.ParseInt(ts, 36, 64)
	if err != nil {
		return ErrInvalidResetToken
	}
	if !hmac.Equal([]byte(sig), []byte(t.sign(subject, ts))) {
		return ErrInvalidResetToken
	}
	if t.now().Sub(time.Unix(issued, 0)) > t.ttl {
		return ErrInvalidResetToken
	}
	return nil
}

func (t *PasswordResetTokens) sign(subject ResetSubject, ts string) string {
	var login string
	if subject.LastLoginAt != nil {
		login = strconv.FormatInt(subject.LastLoginAt.UTC().Unix(), 10)
	}
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(subject.UserID.String()))
	mac.Write([]byte(subject.PasswordHash))
	mac.Write([]byte(login))
	mac.Write([]byte(ts))
	return hex.EncodeToString(mac.Sum(nil))[:40]
}
