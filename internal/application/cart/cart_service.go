package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/cart"
	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cart errors surfaced to clients
var (
	ErrInvalidProduct = shared.NewFieldError("product_id", "Invalid product.")
	ErrNoCartOwner    = shared.NewDomainError("INVALID_SESSION", "Session id is required for guest carts")
)

// ProductReader is the part of the product repository carts need
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error)
}

// CartService resolves and mutates the caller's active cart
type CartService struct {
	carts    cart.CartRepository
	coupons  cart.CouponRepository
	products ProductReader
	storage  appshared.ObjectStorage
	logger   *zap.Logger
	now      func() time.Time
}

// NewCartService creates a new CartService
func NewCartService(
	carts cart.CartRepository,
	coupons cart.CouponRepository,
	products ProductReader,
	storage appshared.ObjectStorage,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		carts:    carts,
		coupons:  coupons,
		products: products,
		storage:  storage,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns the owner's active cart, creating it when missing
func (s *CartService) Resolve(ctx context.Context, owner Owner) (*cart.Cart, error) {
	var (
		c   *cart.Cart
		err error
	)
	switch {
	case owner.UserID != nil:
		c, err = s.carts.FindActiveByUser(ctx, *owner.UserID)
	case owner.SessionID != "":
		c, err = s.carts.FindActiveBySession(ctx, owner.SessionID)
	default:
		return nil, ErrNoCartOwner
	}
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find cart: %w", err)
	}

	if owner.UserID != nil {
		c = cart.NewUserCart(*owner.UserID)
	} else if c, err = cart.NewGuestCart(owner.SessionID); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	s.logger.Debug("Cart created", zap.String("cart_id", c.ID.String()), zap.Bool("guest", owner.UserID == nil))
	return c, nil
}

// Get returns the owner's cart with product summaries
func (s *CartService) Get(ctx context.Context, owner Owner) (*CartResponse, error) {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, c)
}

// AddItem adds a product at its current effective price. An existing line is incremented.
func (s *CartService) AddItem(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (*CartResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidProduct
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrInvalidProduct
	}

	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, err := c.AddItem(product.ID, quantity, product.EffectivePrice()); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.render(ctx, c)
}

// UpdateItem sets the quantity of a line in the owner's cart
func (s *CartService) UpdateItem(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) (*CartResponse, error) {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, err := c.UpdateItemQuantity(itemID, quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.render(ctx, c)
}

// RemoveItem deletes a line from the owner's cart
func (s *CartService) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartResponse, error) {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.render(ctx, c)
}

// Clear empties the owner's cart
func (s *CartService) Clear(ctx context.Context, owner Owner) error {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return err
	}
	c.Clear()
	if err := s.carts.Save(ctx, c); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// ApplyCoupon attaches a valid coupon and returns the discounted total
func (s *CartService) ApplyCoupon(ctx context.Context, owner Owner, code string) (*ApplyCouponResult, error) {
	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, cart.ErrCouponNotFound
		}
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyCoupon(coupon, s.now()); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	rendered, err := s.render(ctx, c)
	if err != nil {
		return nil, err
	}

	total := c.TotalPrice()
	discount := coupon.DiscountFor(total)
	return &ApplyCouponResult{
		Cart:       *rendered,
		Coupon:     ToCouponResponse(coupon),
		Discount:   discount,
		FinalTotal: total.Sub(discount),
	}, nil
}

func (s *CartService) render(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) > 0 {
		products, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load cart products: %w", err)
		}
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
	}
	resp := toCartResponse(c, byID, s.storage)
	return &resp, nil
}
