package payment

import (
	"context"

	"github.com/google/uuid"
)

// Filter contains filter options for listing payments
type Filter struct {
	// UserID restricts to the user's payments; nil means all
	UserID   *uuid.UUID
	Status   *Status
	Method   *Method
	Page     int
	PageSize int
}

// Repository defines the interface for payment persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*Payment, error)
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	FindAll(ctx context.Context, filter Filter) ([]Payment, int64, error)
	// Save upserts the payment and appends unsaved log entries
	Save(ctx context.Context, payment *Payment) error
}
