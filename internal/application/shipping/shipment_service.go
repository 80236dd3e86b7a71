package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/adfinitum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// NoteStatusUpdated is recorded when staff change a shipment status without a note
const NoteStatusUpdated = "Status updated by admin"

// orderStatusFor maps shipment milestones onto the order lifecycle
var orderStatusFor = map[shipping.Status]order.Status{
	shipping.StatusShipped:   order.StatusShipped,
	shipping.StatusDelivered: order.StatusDelivered,
}

// ShipmentService tracks the delivery of orders
type ShipmentService struct {
	scope     appshared.TransactionScope
	shipments shipping.ShipmentRepository
	orders    order.OrderRepository
	addresses shipping.AddressRepository
	methods   shipping.MethodRepository
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	scope appshared.TransactionScope,
	shipments shipping.ShipmentRepository,
	orders order.OrderRepository,
	addresses shipping.AddressRepository,
	methods shipping.MethodRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{
		scope:     scope,
		shipments: shipments,
		orders:    orders,
		addresses: addresses,
		methods:   methods,
		events:    events,
		logger:    logger,
	}
}

// List returns shipments. Non-staff callers only see shipments of their orders.
func (s *ShipmentService) List(ctx context.Context, actor appshared.Actor, filter ShipmentListFilter) (*ShipmentListResult, error) {
	query := shipping.ShipmentFilter{
		OwnerID:  actor.OwnerFilter(),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if filter.Status != "" {
		status := shipping.Status(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewFieldError("status", "\""+filter.Status+"\" is not a valid choice.")
		}
		query.Status = &status
	}
	shipments, total, err := s.shipments.FindAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	items := make([]ShipmentResponse, 0, len(shipments))
	for i := range shipments {
		items = append(items, ToShipmentResponse(&shipments[i]))
	}
	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	return &ShipmentListResult{Shipments: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get returns a shipment visible to the actor
func (s *ShipmentService) Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// History returns the status changes of a shipment visible to the actor
func (s *ShipmentService) History(ctx context.Context, actor appshared.Actor, id uuid.UUID) ([]HistoryResponse, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.shipments.FindHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load shipment history: %w", err)
	}
	return ToHistoryResponses(entries), nil
}

// Create opens the shipment of an order. An order has at most one shipment.
func (s *ShipmentService) Create(ctx context.Context, input ShipmentInput) (*ShipmentResponse, error) {
	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewFieldError("order_id", "Invalid order.")
		}
		return nil, err
	}
	if _, err := s.shipments.FindByOrder(ctx, o.ID); err == nil {
		return nil, shipping.ErrShipmentExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find shipment: %w", err)
	}
	if _, err := s.addresses.FindByID(ctx, input.AddressID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewFieldError("address_id", "Invalid address.")
		}
		return nil, err
	}
	if input.MethodID != nil {
		if _, err := s.methods.FindByID(ctx, *input.MethodID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewFieldError("method_id", "Invalid shipping method.")
			}
			return nil, err
		}
	}

	shipment := shipping.NewShipment(o.ID, input.AddressID, input.MethodID, input.CourierName, input.TrackingNumber)
	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		if err := repos.Shipments().Save(ctx, shipment); err != nil {
			return fmt.Errorf("save shipment: %w", err)
		}
		if shipment.TrackingNumber == "" {
			return nil
		}
		o.SetTrackingNumber(shipment.TrackingNumber)
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Shipment created",
		zap.String("shipment_id", shipment.ID.String()),
		zap.String("order_id", o.ID.String()),
	)
	return s.reload(ctx, shipment.ID)
}

// UpdateCarrier changes courier and tracking number; the tracking number
// is mirrored onto the order.
func (s *ShipmentService) UpdateCarrier(ctx context.Context, id uuid.UUID, input CarrierInput) (*ShipmentResponse, error) {
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		shipment, err := repos.Shipments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		shipment.UpdateCarrier(input.CourierName, input.TrackingNumber)
		if err := repos.Shipments().Save(ctx, shipment); err != nil {
			return fmt.Errorf("save shipment: %w", err)
		}
		o, err := repos.Orders().FindByID(ctx, shipment.OrderID)
		if err != nil {
			return fmt.Errorf("find shipment order: %w", err)
		}
		o.SetTrackingNumber(shipment.TrackingNumber)
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// UpdateStatus moves a shipment forward. Reaching shipped or delivered also
// moves the order when its own transition rules allow it.
func (s *ShipmentService) UpdateStatus(ctx context.Context, actor appshared.Actor, id uuid.UUID, status, note string) (*ShipmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "update_status",
		attribute.String("shipment.id", id.String()),
		attribute.String("shipment.target_status", status))
	defer span.End()

	target := shipping.Status(status)
	if !target.IsValid() {
		return nil, shipping.ErrInvalidStatus.WithField("status")
	}
	if strings.TrimSpace(note) == "" {
		note = NoteStatusUpdated
	}

	var shipment *shipping.Shipment
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		shipment, err = repos.Shipments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := shipment.TransitionTo(target, note); err != nil {
			return err
		}
		if err := repos.Shipments().Save(ctx, shipment); err != nil {
			return fmt.Errorf("save shipment: %w", err)
		}

		orderStatus, ok := orderStatusFor[target]
		if !ok {
			return nil
		}
		o, err = repos.Orders().FindByID(ctx, shipment.OrderID)
		if err != nil {
			return fmt.Errorf("find shipment order: %w", err)
		}
		if !o.Status.CanTransitionTo(orderStatus) {
			s.logger.Info("Order left unchanged by shipment update",
				zap.String("order_id", o.ID.String()),
				zap.String("order_status", string(o.Status)),
				zap.String("shipment_status", string(target)),
			)
			o = nil
			return nil
		}
		if err := o.TransitionTo(orderStatus, "Shipment "+string(target), actor.UserID); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	var sources []appshared.EventSource
	sources = append(sources, shipment)
	if o != nil {
		sources = append(sources, o)
	}
	appshared.PublishEvents(ctx, s.events, s.logger, sources...)

	s.logger.Info("Shipment status updated",
		zap.String("shipment_id", shipment.ID.String()),
		zap.String("status", string(shipment.Status)),
	)
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

func (s *ShipmentService) load(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*shipping.Shipment, error) {
	shipment, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsStaff {
		return shipment, nil
	}
	o, err := s.orders.FindByID(ctx, shipment.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if !actor.CanAccess(o.UserID) {
		return nil, shared.ErrNotFound
	}
	return shipment, nil
}

func (s *ShipmentService) reload(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload shipment: %w", err)
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
