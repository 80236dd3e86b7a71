package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/cart"
	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/adfinitum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Checkout and status notes recorded in the order history
const (
	NoteCheckout      = "Order created during checkout"
	NoteAdminUpdate   = "Status updated by admin"
	NoteUserCancelled = "Order cancelled by user"
)

// ErrInvalidCart is returned when the checkout cart is missing, inactive or not the caller's
var ErrInvalidCart = shared.NewFieldError("cart_id", "Invalid or inactive cart.")

// ProductReader is the part of the product repository checkout needs
type ProductReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error)
}

// OrderService handles checkout and the order lifecycle
type OrderService struct {
	scope     appshared.TransactionScope
	orders    order.OrderRepository
	addresses shipping.AddressRepository
	methods   shipping.MethodRepository
	coupons   cart.CouponRepository
	products  ProductReader
	storage   appshared.ObjectStorage
	events    shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope appshared.TransactionScope,
	orders order.OrderRepository,
	addresses shipping.AddressRepository,
	methods shipping.MethodRepository,
	coupons cart.CouponRepository,
	products ProductReader,
	storage appshared.ObjectStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		scope:     scope,
		orders:    orders,
		addresses: addresses,
		methods:   methods,
		coupons:   coupons,
		products:  products,
		storage:   storage,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Checkout converts the caller's active cart into a pending order.
// Loading the cart, saving the order and deactivating the cart happen in one transaction.
func (s *OrderService) Checkout(ctx context.Context, actor appshared.Actor, input CheckoutInput) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "checkout",
		attribute.String("cart.id", input.CartID.String()))
	defer span.End()

	var placed *order.Order
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		c, err := repos.Carts().FindByID(ctx, input.CartID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrInvalidCart
			}
			return fmt.Errorf("find cart: %w", err)
		}
		if !c.IsActive || !c.OwnedBy(actor.UserID, actor.SessionID) {
			return ErrInvalidCart
		}
		if c.IsEmpty() {
			return order.ErrEmptyOrder
		}
		address, method, err := s.resolveShipping(ctx, actor, input)
		if err != nil {
			return err
		}

		o, err := order.NewOrder(order.Customer{
			UserID:      actor.UserID,
			Email:       input.Email,
			FullName:    input.FullName,
			PhoneNumber: input.PhoneNumber,
		}, order.PaymentMethod(input.PaymentMethod))
		if err != nil {
			return err
		}
		o.BillingAddress = strings.TrimSpace(input.BillingAddress)
		if err := s.snapshotItems(ctx, o, c); err != nil {
			return err
		}
		o.SetShipping(address.ID, method.ID, address.Format(), method.BaseCost, method.EstimatedDays)

		discount, couponCode, err := s.couponDiscount(ctx, c)
		if err != nil {
			return err
		}
		if err := o.Place(discount, couponCode, NoteCheckout); err != nil {
			return err
		}

		c.Deactivate()
		if err := repos.Carts().Save(ctx, c); err != nil {
			return fmt.Errorf("deactivate cart: %w", err)
		}
		if err := repos.Orders().Save(ctx, o); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		placed = o
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	appshared.PublishEvents(ctx, s.events, s.logger, placed)

	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("total", placed.Total.StringFixed(2)),
		zap.Int("items", len(placed.Items)),
	)
	resp := ToOrderResponse(placed, s.storage)
	return &resp, nil
}

// resolveShipping loads the caller's address and an active shipping method
func (s *OrderService) resolveShipping(ctx context.Context, actor appshared.Actor, input CheckoutInput) (*shipping.Address, *shipping.Method, error) {
	if actor.UserID == nil {
		return nil, nil, shipping.ErrInvalidAddress
	}
	address, err := s.addresses.FindForUser(ctx, *actor.UserID, input.ShippingAddressID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shipping.ErrInvalidAddress
		}
		return nil, nil, fmt.Errorf("find address: %w", err)
	}
	method, err := s.methods.FindByID(ctx, input.ShippingMethodID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shipping.ErrInvalidMethod
		}
		return nil, nil, fmt.Errorf("find shipping method: %w", err)
	}
	if !method.IsActive {
		return nil, nil, shipping.ErrInvalidMethod
	}
	return address, method, nil
}

func (s *OrderService) snapshotItems(ctx context.Context, o *order.Order, c *cart.Cart) error {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, item := range c.Items {
		productID := item.ProductID
		name, image := "", ""
		if p, ok := byID[productID]; ok {
			name = p.Name
			if img := p.FeaturedImage(); img != nil {
				image = img.StorageKey
			}
		}
		o.AddItem(&productID, name, image, item.Quantity, item.Price)
	}
	return nil
}

// couponDiscount returns the discount of the cart's coupon when it is still valid
func (s *OrderService) couponDiscount(ctx context.Context, c *cart.Cart) (decimal.Decimal, string, error) {
	if c.CouponCode == "" {
		return decimal.Zero, "", nil
	}
	coupon, err := s.coupons.FindByCode(ctx, c.CouponCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, "", nil
		}
		return decimal.Zero, "", fmt.Errorf("find coupon: %w", err)
	}
	if !coupon.IsValid(s.now()) {
		return decimal.Zero, "", nil
	}
	return coupon.DiscountFor(c.TotalPrice()), coupon.Code, nil
}

// List returns orders newest first. Non-staff callers only see their own.
func (s *OrderService) List(ctx context.Context, actor appshared.Actor, filter ListFilter) (*ListResult, error) {
	query := order.OrderFilter{
		UserID:   actor.OwnerFilter(),
		Search:   strings.TrimSpace(filter.Search),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if filter.Status != "" {
		status := order.Status(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewFieldError("status", "\""+filter.Status+"\" is not a valid choice.")
		}
		query.Status = &status
	}
	orders, total, err := s.orders.FindAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	items := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, ToOrderResponse(&orders[i], s.storage))
	}
	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	return &ListResult{Orders: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get returns an order visible to the actor
func (s *OrderService) Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.Load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o, s.storage)
	return &resp, nil
}

// Load returns the domain order when the actor may see it; others get not-found
func (s *OrderService) Load(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	if !actor.CanAccess(o.UserID) {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

// UpdateStatus moves an order to a new status on behalf of staff
func (s *OrderService) UpdateStatus(ctx context.Context, actor appshared.Actor, id uuid.UUID, status, note string) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		attribute.String("order.id", id.String()),
		attribute.String("order.target_status", status))
	defer span.End()

	target := order.Status(status)
	if !target.IsValid() {
		return nil, order.ErrInvalidStatus.WithField("status")
	}
	if strings.TrimSpace(note) == "" {
		note = NoteAdminUpdate
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	if err := o.TransitionTo(target, note, actor.UserID); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("save order: %w", err)
	}
	appshared.PublishEvents(ctx, s.events, s.logger, o)

	s.logger.Info("Order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)),
	)
	resp := ToOrderResponse(o, s.storage)
	return &resp, nil
}

// Cancel cancels an order. Only the owner or staff may cancel, and only before shipping.
func (s *OrderService) Cancel(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	requester := uuid.Nil
	if actor.UserID != nil {
		requester = *actor.UserID
	}
	if err := o.Cancel(requester, actor.IsStaff, NoteUserCancelled); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	appshared.PublishEvents(ctx, s.events, s.logger, o)

	s.logger.Info("Order cancelled", zap.String("order_id", o.ID.String()))
	resp := ToOrderResponse(o, s.storage)
	return &resp, nil
}

// History returns the order's status changes, oldest first
func (s *OrderService) History(ctx context.Context, actor appshared.Actor, id uuid.UUID) ([]HistoryResponse, error) {
	if _, err := s.Load(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.orders.FindHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load order history: %w", err)
	}
	return ToHistoryResponses(entries), nil
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
