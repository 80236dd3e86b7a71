package cart

import (
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/cart"
	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Owner identifies whose cart a request addresses: a signed-in user or a guest session
type Owner struct {
	UserID    *uuid.UUID
	SessionID string
}

// ProductSummary is the product embedded in a cart line
type ProductSummary struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	IsActive bool            `json:"is_active"`
}

// ItemResponse represents a cart line
type ItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	Product   *ProductSummary `json:"product"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	AddedAt   time.Time       `json:"added_at"`
}

// CartResponse represents a cart with its lines and totals
type CartResponse struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user"`
	SessionID  string          `json:"session_id,omitempty"`
	IsActive   bool            `json:"is_active"`
	CouponCode string          `json:"coupon_code,omitempty"`
	Items      []ItemResponse  `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CouponInput is the admin create/update payload
type CouponInput struct {
	Code            string
	DiscountPercent decimal.Decimal
	Active          *bool
	ValidFrom       time.Time
	ValidTo         time.Time
}

// CouponResponse represents a coupon
type CouponResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Active          bool            `json:"active"`
	ValidFrom       time.Time       `json:"valid_from"`
	ValidTo         time.Time       `json:"valid_to"`
}

// ApplyCouponResult is returned when a coupon is applied to a cart
type ApplyCouponResult struct {
	Cart       CartResponse    `json:"cart"`
	Coupon     CouponResponse  `json:"coupon"`
	Discount   decimal.Decimal `json:"discount"`
	FinalTotal decimal.Decimal `json:"final_total"`
}

// ToCouponResponse converts a domain coupon
func ToCouponResponse(c *cart.Coupon) CouponResponse {
	return CouponResponse{
		ID:              c.ID,
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		Active:          c.Active,
		ValidFrom:       c.ValidFrom,
		ValidTo:         c.ValidTo,
	}
}

// toCartResponse converts a cart; products maps product ids to loaded products
func toCartResponse(c *cart.Cart, products map[uuid.UUID]*catalog.Product, storage appshared.ObjectStorage) CartResponse {
	resp := CartResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		SessionID:  c.SessionID,
		IsActive:   c.IsActive,
		CouponCode: c.CouponCode,
		Items:      make([]ItemResponse, 0, len(c.Items)),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	for _, item := range c.Items {
		line := ItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal(),
			AddedAt:   item.AddedAt,
		}
		if p, ok := products[item.ProductID]; ok {
			summary := &ProductSummary{
				ID:       p.ID,
				Name:     p.Name,
				Slug:     p.Slug,
				Price:    p.EffectivePrice(),
				IsActive: p.IsActive,
			}
			if img := p.FeaturedImage(); img != nil {
				summary.Image = storage.URL(img.StorageKey)
			}
			line.Product = summary
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}
