package shipping

import (
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeShipment is the aggregate type for shipment events
const AggregateTypeShipment = "Shipment"

// EventTypeShipmentStatusChanged is published on every shipment transition
const EventTypeShipmentStatusChanged = "ShipmentStatusChanged"

// ShipmentStatusChangedEvent is published on every shipment transition
type ShipmentStatusChangedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID `json:"shipment_id"`
	OrderID    uuid.UUID `json:"order_id"`
	OldStatus  Status    `json:"old_status"`
	NewStatus  Status    `json:"new_status"`
	Note       string    `json:"note,omitempty"`
}

// NewShipmentStatusChangedEvent creates a new ShipmentStatusChangedEvent
func NewShipmentStatusChangedEvent(s *Shipment, old, new Status, note string) *ShipmentStatusChangedEvent {
	return &ShipmentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentStatusChanged, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		OrderID:         s.OrderID,
		OldStatus:       old,
		NewStatus:       new,
		Note:            note,
	}
}
