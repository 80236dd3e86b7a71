package shared

import (
	"context"
	"time"
)

// CallbackReplayWindow is how long a settled M-Pesa CheckoutRequestID is
// remembered. Daraja retries a callback for minutes, not days.
const CallbackReplayWindow = 24 * time.Hour

// IdempotencyStore remembers keys that have already been handled.
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It returns false when key was
	// already recorded, in which case the caller must skip the work.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}
