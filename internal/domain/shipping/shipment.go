package shipping

import (
	"strings"
	"time"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status is the delivery state of a shipment
type Status string

const (
	StatusPending        Status = "pending"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// progression is the forward order of non-cancelled statuses
var progression = []Status{
	StatusPending, StatusProcessing, StatusShipped, StatusInTransit, StatusOutForDelivery, StatusDelivered,
}

// Shipping errors
var (
	ErrInvalidStatus      = shared.ErrInvalidStatus
	ErrTransitionDenied   = shared.NewDomainError("INVALID_TRANSITION", "Status transition is not allowed")
	ErrShipmentExists     = shared.ErrAlreadyExists.WithMessage("This order already has a shipment.")
	ErrInvalidAddress     = shared.NewFieldError("shipping_address_id", "Invalid shipping address.")
	ErrInvalidMethod      = shared.NewFieldError("shipping_method_id", "Invalid shipping method.")
	ErrMethodNameConflict = shared.ErrAlreadyExists.WithMessage("Shipping method with this name already exists.")
)

func (s Status) rank() int {
	for i, v := range progression {
		if v == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is one of the known statuses
func (s Status) IsValid() bool {
	return s == StatusCancelled || s.rank() >= 0
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo allows any forward move along the progression,
// and cancellation from any non-terminal status.
func (s Status) CanTransitionTo(target Status) bool {
	if s.IsTerminal() || !target.IsValid() || s == target {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return target.rank() > s.rank()
}

// Shipment tracks delivery of one order
type Shipment struct {
	shared.BaseAggregateRoot
	OrderID        uuid.UUID
	AddressID      uuid.UUID
	MethodID       *uuid.UUID
	CourierName    string
	TrackingNumber string
	Status         Status
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	History        []HistoryEntry

	Address *Address
	Method  *Method
}

// HistoryEntry is an append-only record of a shipment status change
type HistoryEntry struct {
	ID         uuid.UUID
	ShipmentID uuid.UUID
	OldStatus  Status
	NewStatus  Status
	ChangedAt  time.Time
	Note       string
}

// NewShipment creates a pending shipment and records the initial history entry
func NewShipment(orderID, addressID uuid.UUID, methodID *uuid.UUID, courier, tracking string) *Shipment {
	s := &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		AddressID:         addressID,
		MethodID:          methodID,
		CourierName:       strings.TrimSpace(courier),
		TrackingNumber:    strings.TrimSpace(tracking),
		Status:            StatusPending,
		History:           make([]HistoryEntry, 0),
	}
	s.record("", StatusPending, "Shipment created")
	return s
}

// UpdateCarrier changes courier and tracking details
func (s *Shipment) UpdateCarrier(courier, tracking string) {
	s.CourierName = strings.TrimSpace(courier)
	s.TrackingNumber = strings.TrimSpace(tracking)
	s.Touch()
}

// TransitionTo moves the shipment to a new status and appends a history entry.
// Entering shipped or delivered stamps the matching timestamp.
func (s *Shipment) TransitionTo(target Status, note string) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}
	if !s.Status.CanTransitionTo(target) {
		return ErrTransitionDenied.WithMessage(
			"Cannot change shipment status from " + string(s.Status) + " to " + string(target))
	}
	now := time.Now()
	switch target {
	case StatusShipped:
		s.ShippedAt = &now
	case StatusDelivered:
		s.DeliveredAt = &now
	}
	old := s.Status
	s.Status = target
	s.record(old, target, note)
	s.AddDomainEvent(NewShipmentStatusChangedEvent(s, old, target, note))
	return nil
}

// LatestHistory returns the most recent history entry, or nil
func (s *Shipment) LatestHistory() *HistoryEntry {
	if len(s.History) == 0 {
		return nil
	}
	return &s.History[len(s.History)-1]
}

func (s *Shipment) record(old, new Status, note string) {
	now := time.Now()
	s.History = append(s.History, HistoryEntry{
		ID:         uuid.New(),
		ShipmentID: s.ID,
		OldStatus:  old,
		NewStatus:  new,
		ChangedAt:  now,
		Note:       note,
	})
	s.UpdatedAt = now
	s.Version++
}
