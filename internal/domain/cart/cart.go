package cart

import (
	"time"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is a shopping cart owned by a user or by a guest session.
// It is the aggregate root for cart items.
type Cart struct {
	shared.BaseAggregateRoot
	UserID     *uuid.UUID
	SessionID  string
	IsActive   bool
	CouponCode string
	Items      []CartItem
}

// CartItem is a product line with the price captured when it was added
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
	AddedAt   time.Time
}

// Subtotal returns price × quantity
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewUserCart creates an active cart for a signed-in user
func NewUserCart(userID uuid.UUID) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            &userID,
		IsActive:          true,
		Items:             make([]CartItem, 0),
	}
}

// NewGuestCart creates an active cart keyed by a session id
func NewGuestCart(sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session id is required for guest carts")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SessionID:         sessionID,
		IsActive:          true,
		Items:             make([]CartItem, 0),
	}, nil
}

// TotalItems returns the sum of quantities
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the sum of line subtotals
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddItem adds a product line or increases the quantity of an existing one.
// The price snapshot is only taken for new lines.
func (c *Cart) AddItem(productID uuid.UUID, quantity int, price decimal.Decimal) (*CartItem, error) {
	if err := c.ensureActive(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, shared.NewFieldError("quantity", "Quantity must be at least 1.")
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.Items[i].Touch()
			c.Touch()
			return &c.Items[i], nil
		}
	}
	now := time.Now()
	item := CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  productID,
		Quantity:   quantity,
		Price:      price,
		AddedAt:    now,
	}
	c.Items = append(c.Items, item)
	c.Touch()
	return &c.Items[len(c.Items)-1], nil
}

// UpdateItemQuantity sets the quantity of a line
func (c *Cart) UpdateItemQuantity(itemID uuid.UUID, quantity int) (*CartItem, error) {
	if err := c.ensureActive(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, shared.NewFieldError("quantity", "Quantity must be at least 1.")
	}
	item := c.FindItem(itemID)
	if item == nil {
		return nil, shared.ErrNotFound.WithMessage("Cart item not found")
	}
	item.Quantity = quantity
	item.Touch()
	c.Touch()
	return item, nil
}

// RemoveItem removes a line
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	if err := c.ensureActive(); err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Touch()
			return nil
		}
	}
	return shared.ErrNotFound.WithMessage("Cart item not found")
}

// FindItem returns the line with the given id, or nil
func (c *Cart) FindItem(itemID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// Clear removes every line
func (c *Cart) Clear() {
	c.Items = make([]CartItem, 0)
	c.Touch()
}

// ApplyCoupon attaches a valid coupon code to the cart
func (c *Cart) ApplyCoupon(coupon *Coupon, now time.Time) error {
	if !coupon.IsValid(now) {
		return ErrCouponExpired
	}
	c.CouponCode = coupon.Code
	c.Touch()
	return nil
}

// Deactivate closes the cart after checkout
func (c *Cart) Deactivate() {
	c.IsActive = false
	c.Touch()
}

// OwnedBy reports whether the cart belongs to the user or guest session
func (c *Cart) OwnedBy(userID *uuid.UUID, sessionID string) bool {
	if c.UserID != nil {
		return userID != nil && *c.UserID == *userID
	}
	return sessionID != "" && c.SessionID == sessionID
}

func (c *Cart) ensureActive() error {
	if !c.IsActive {
		return shared.ErrInvalidState.WithMessage("Cart is no longer active")
	}
	return nil
}
