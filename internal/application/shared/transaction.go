package shared

import (
	"context"

	"github.com/adfinitum/backend/internal/domain/cart"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/payment"
	"github.com/adfinitum/backend/internal/domain/shipping"
)

// TransactionScope runs a unit of work atomically. If fn returns an error
// every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to the repositories that take part in
// cross-aggregate writes. All of them share the scope's transaction.
type Repositories interface {
	Carts() cart.CartRepository
	Orders() order.OrderRepository
	Shipments() shipping.ShipmentRepository
	Payments() payment.Repository
}

// RepositorySet is a plain Repositories value
type RepositorySet struct {
	CartRepo     cart.CartRepository
	OrderRepo    order.OrderRepository
	ShipmentRepo shipping.ShipmentRepository
	PaymentRepo  payment.Repository
}

func (r RepositorySet) Carts() cart.CartRepository            { return r.CartRepo }
func (r RepositorySet) Orders() order.OrderRepository         { return r.OrderRepo }
func (r RepositorySet) Shipments() shipping.ShipmentRepository { return r.ShipmentRepo }
func (r RepositorySet) Payments() payment.Repository          { return r.PaymentRepo }

// NoOpTransactionScope runs fn directly against a fixed repository set.
// It is used in tests and wherever atomicity is not required.
type NoOpTransactionScope struct {
	Repos RepositorySet
}

// Execute calls fn without opening a transaction
func (s NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.Repos)
}
