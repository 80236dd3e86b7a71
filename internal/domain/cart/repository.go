package cart

import (
	"context"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence.
// Carts are loaded together with their items.
type CartRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
	FindActiveBySession(ctx context.Context, sessionID string) (*Cart, error)
	// Save upserts the cart and replaces its item set
	Save(ctx context.Context, cart *Cart) error
}

// CouponRepository defines the interface for coupon persistence
type CouponRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	// FindByCode matches case-insensitively
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Coupon, int64, error)
	Save(ctx context.Context, coupon *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}
