package order

import (
	"strings"
	"time"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order errors
var (
	ErrInvalidStatus     = shared.ErrInvalidStatus
	ErrTransitionDenied  = shared.NewDomainError("INVALID_TRANSITION", "Status transition is not allowed")
	ErrCannotCancel      = shared.NewDomainError("ORDER_NOT_CANCELLABLE", "Order cannot be cancelled at this stage")
	ErrCancelForbidden   = shared.ErrForbidden.WithMessage("You cannot cancel this order")
	ErrEmptyOrder        = shared.NewDomainError("EMPTY_ORDER", "Cart is empty.")
	ErrNegativeTotal     = shared.NewDomainError("INVALID_TOTAL", "Order total cannot be negative")
	ErrOrderNotFound     = shared.ErrNotFound.WithMessage("Order not found")
	ErrPaymentIncomplete = shared.NewDomainError("PAYMENT_INCOMPLETE", "Order has not been paid")
)

// Order is a placed purchase. It is the aggregate root for items and history.
type Order struct {
	shared.BaseAggregateRoot
	UserID            *uuid.UUID
	Email             string
	FullName          string
	PhoneNumber       string
	ShippingAddress   string
	BillingAddress    string
	ShippingAddressID *uuid.UUID
	ShippingMethodID  *uuid.UUID
	Status            Status
	PaymentMethod     PaymentMethod
	PaymentID         string
	PaymentStatus     PaymentStatus
	Subtotal          decimal.Decimal
	Discount          decimal.Decimal
	ShippingCost      decimal.Decimal
	Total             decimal.Decimal
	CouponCode        string
	TrackingNumber    string
	EstimatedDelivery *time.Time
	Items             []OrderItem
	History           []HistoryEntry
}

// OrderItem is a snapshot of a cart line at checkout
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   *uuid.UUID
	ProductName string
	Image       string
	Quantity    int
	Price       decimal.Decimal
	Subtotal    decimal.Decimal
}

// HistoryEntry is an append-only record of a status change
type HistoryEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	OldStatus Status
	NewStatus Status
	ChangedAt time.Time
	Note      string
	ChangedBy *uuid.UUID
}

// Customer holds the contact details captured at checkout
type Customer struct {
	UserID      *uuid.UUID
	Email       string
	FullName    string
	PhoneNumber string
}

// NewOrder creates a pending order and records the initial history entry
func NewOrder(customer Customer, paymentMethod PaymentMethod) (*Order, error) {
	email := strings.ToLower(strings.TrimSpace(customer.Email))
	if email == "" {
		return nil, shared.NewFieldError("email", "This field is required.")
	}
	fullName := strings.TrimSpace(customer.FullName)
	if fullName == "" {
		return nil, shared.NewFieldError("full_name", "This field is required.")
	}
	if paymentMethod == "" {
		paymentMethod = PaymentMethodMpesa
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewFieldError("payment_method", "\""+string(paymentMethod)+"\" is not a valid choice.")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            customer.UserID,
		Email:             email,
		FullName:          fullName,
		PhoneNumber:       strings.TrimSpace(customer.PhoneNumber),
		PaymentMethod:     paymentMethod,
		PaymentStatus:     PaymentStatusUnpaid,
		Subtotal:          decimal.Zero,
		Discount:          decimal.Zero,
		ShippingCost:      decimal.Zero,
		Total:             decimal.Zero,
		Items:             make([]OrderItem, 0),
		History:           make([]HistoryEntry, 0),
	}
	return o, nil
}

// AddItem snapshots a line into the order
func (o *Order) AddItem(productID *uuid.UUID, name, image string, quantity int, price decimal.Decimal) {
	o.Items = append(o.Items, OrderItem{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		ProductName: name,
		Image:       image,
		Quantity:    quantity,
		Price:       price,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(quantity))),
	})
}

// SetShipping records the destination and delivery method
func (o *Order) SetShipping(addressID, methodID uuid.UUID, addressText string, cost decimal.Decimal, estimatedDays int) {
	o.ShippingAddressID = &addressID
	o.ShippingMethodID = &methodID
	o.ShippingAddress = addressText
	o.ShippingCost = cost
	eta := o.CreatedAt.AddDate(0, 0, estimatedDays)
	o.EstimatedDelivery = &eta
}

// Place computes totals and enters the pending state.
// It must be called exactly once, after items and shipping are set.
func (o *Order) Place(discount decimal.Decimal, couponCode, note string) error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	o.Subtotal = subtotal
	o.Discount = discount
	o.CouponCode = couponCode
	o.Total = subtotal.Sub(discount).Add(o.ShippingCost)
	if o.Total.IsNegative() {
		return ErrNegativeTotal
	}
	o.record("", StatusPending, note, o.UserID)
	o.Status = StatusPending
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return nil
}

// TransitionTo moves the order to a new status and appends a history entry
func (o *Order) TransitionTo(target Status, note string, changedBy *uuid.UUID) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}
	if !o.Status.CanTransitionTo(target) {
		return ErrTransitionDenied.WithMessage(
			"Cannot change order status from " + string(o.Status) + " to " + string(target))
	}
	old := o.Status
	o.Status = target
	o.record(old, target, note, changedBy)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old, target, note))
	return nil
}

// Cancel cancels the order on behalf of a customer or staff member
func (o *Order) Cancel(requesterID uuid.UUID, isStaff bool, note string) error {
	if !isStaff && !o.IsOwnedBy(requesterID) {
		return ErrCancelForbidden
	}
	switch o.Status {
	case StatusShipped, StatusDelivered, StatusCancelled:
		return ErrCannotCancel
	}
	return o.TransitionTo(StatusCancelled, note, &requesterID)
}

// MarkPaid records a successful payment and moves a pending order to paid
func (o *Order) MarkPaid(paymentID, note string) error {
	o.PaymentStatus = PaymentStatusPaid
	o.PaymentID = paymentID
	if o.Status == StatusPending {
		return o.TransitionTo(StatusPaid, note, nil)
	}
	o.Touch()
	return nil
}

// MarkPaymentFailed records a failed payment attempt
func (o *Order) MarkPaymentFailed() {
	o.PaymentStatus = PaymentStatusFailed
	o.Touch()
}

// SetTrackingNumber mirrors the shipment tracking number onto the order
func (o *Order) SetTrackingNumber(tracking string) {
	o.TrackingNumber = tracking
	o.Touch()
}

// IsOwnedBy reports whether the order was placed by the user
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// LatestHistory returns the most recent history entry, or nil
func (o *Order) LatestHistory() *HistoryEntry {
	if len(o.History) == 0 {
		return nil
	}
	return &o.History[len(o.History)-1]
}

func (o *Order) record(old, new Status, note string, changedBy *uuid.UUID) {
	now := time.Now()
	o.History = append(o.History, HistoryEntry{
		ID:        uuid.New(),
		OrderID:   o.ID,
		OldStatus: old,
		NewStatus: new,
		ChangedAt: now,
		Note:      note,
		ChangedBy: changedBy,
	})
	o.UpdatedAt = now
	o.Version++
}
