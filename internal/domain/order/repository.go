package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderFilter contains filter options for listing orders
type OrderFilter struct {
	// UserID restricts to one customer's orders; nil means all (staff view)
	UserID   *uuid.UUID
	Status   *Status
	Search   string
	Page     int
	PageSize int
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID loads the order with items and history
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	// Save upserts the order, writes items on first save and appends
	// history entries that are not yet stored. History rows are never
	// updated or deleted.
	Save(ctx context.Context, order *Order) error
	FindHistory(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error)
}
