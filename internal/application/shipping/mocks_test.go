package shipping

import (
	"context"

	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAddressRepository is a mock implementation of shipping.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Address), args.Error(1)
}

func (m *MockAddressRepository) FindForUser(ctx context.Context, userID, id uuid.UUID) (*shipping.Address, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Address), args.Error(1)
}

func (m *MockAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]shipping.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]shipping.Address), args.Error(1)
}

func (m *MockAddressRepository) Save(ctx context.Context, a *shipping.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

// MockMethodRepository is a mock implementation of shipping.MethodRepository
type MockMethodRepository struct {
	mock.Mock
}

func (m *MockMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Method, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Method), args.Error(1)
}

func (m *MockMethodRepository) FindActive(ctx context.Context) ([]shipping.Method, error) {
	args := m.Called(ctx)
	return args.Get(0).([]shipping.Method), args.Error(1)
}

func (m *MockMethodRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMethodRepository) Save(ctx context.Context, method *shipping.Method) error {
	return m.Called(ctx, method).Error(0)
}

func (m *MockMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockShipmentRepository is a mock implementation of shipping.ShipmentRepository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, id)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func(context.Context, uuid.UUID) *shipping.Shipment:
		return v(ctx, id), args.Error(1)
	default:
		return v.(*shipping.Shipment), args.Error(1)
	}
}

func (m *MockShipmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindAll(ctx context.Context, filter shipping.ShipmentFilter) ([]shipping.Shipment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]shipping.Shipment), args.Get(1).(int64), args.Error(2)
}

func (m *MockShipmentRepository) Save(ctx context.Context, s *shipping.Shipment) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockShipmentRepository) FindHistory(ctx context.Context, shipmentID uuid.UUID) ([]shipping.HistoryEntry, error) {
	args := m.Called(ctx, shipmentID)
	return args.Get(0).([]shipping.HistoryEntry), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) FindHistory(ctx context.Context, orderID uuid.UUID) ([]order.HistoryEntry, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]order.HistoryEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}
