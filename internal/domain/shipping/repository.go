package shipping

import (
	"context"

	"github.com/google/uuid"
)

// AddressRepository defines the interface for address persistence
type AddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)
	// FindForUser returns the address only if the user owns it
	FindForUser(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
	// Save upserts the address; when it is default, other defaults of the
	// same user are cleared in the same transaction
	Save(ctx context.Context, address *Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// MethodRepository defines the interface for shipping method persistence
type MethodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Method, error)
	FindActive(ctx context.Context) ([]Method, error)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, method *Method) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShipmentFilter contains filter options for listing shipments
type ShipmentFilter struct {
	// OwnerID restricts to shipments of the user's orders; nil means all
	OwnerID  *uuid.UUID
	Status   *Status
	Page     int
	PageSize int
}

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	// FindByID loads the shipment with address, method and history
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Shipment, error)
	FindAll(ctx context.Context, filter ShipmentFilter) ([]Shipment, int64, error)
	// Save upserts the shipment and appends unsaved history entries
	Save(ctx context.Context, shipment *Shipment) error
	FindHistory(ctx context.Context, shipmentID uuid.UUID) ([]HistoryEntry, error)
}
