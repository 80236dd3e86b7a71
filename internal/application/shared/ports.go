// Package shared holds the ports that several application services depend on.
package shared

import (
	"context"
	"io"
	"time"
)

// ObjectStorage stores uploaded media and generated documents.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the absolute public URL for key, or "" for an empty key.
	URL(key string) string
	PresignedURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// Mailer delivers plain-text transactional mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Upload describes a file received from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
