package models

import (
	"time"

	"github.com/adfinitum/backend/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartModel is the persistence model for the Cart aggregate
type CartModel struct {
	AggregateModel
	UserID     *uuid.UUID      `gorm:"type:uuid;index"`
	SessionID  string          `gorm:"type:varchar(100);index"`
	IsActive   bool            `gorm:"not null;index"`
	CouponCode string          `gorm:"type:varchar(50)"`
	Items      []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel is one product line of a cart
type CartItemModel struct {
	BaseModel
	CartID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product,priority:2"`
	Quantity  int             `gorm:"not null;default:1"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	AddedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a domain Cart
func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		BaseAggregateRoot: m.Root(),
		UserID:            m.UserID,
		SessionID:         m.SessionID,
		IsActive:          m.IsActive,
		CouponCode:        m.CouponCode,
		Items:             make([]cart.CartItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		c.Items = append(c.Items, cart.CartItem{
			BaseEntity: item.BaseModel.Entity(),
			CartID:     item.CartID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			AddedAt:    item.AddedAt,
		})
	}
	return c
}

// CartModelFromDomain creates a persistence model from a domain Cart
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{
		UserID:     c.UserID,
		SessionID:  c.SessionID,
		IsActive:   c.IsActive,
		CouponCode: c.CouponCode,
		Items:      make([]CartItemModel, 0, len(c.Items)),
	}
	m.SetRoot(c.BaseAggregateRoot)
	for _, item := range c.Items {
		im := CartItemModel{
			CartID:    c.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			AddedAt:   item.AddedAt,
		}
		im.SetEntity(item.BaseEntity)
		m.Items = append(m.Items, im)
	}
	return m
}

// CouponModel is the persistence model for a Coupon
type CouponModel struct {
	AggregateModel
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Active          bool            `gorm:"not null"`
	ValidFrom       time.Time       `gorm:"not null"`
	ValidTo         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CouponModel) TableName() string {
	return "coupons"
}

// ToDomain converts the persistence model to a domain Coupon
func (m *CouponModel) ToDomain() *cart.Coupon {
	return &cart.Coupon{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		DiscountPercent:   m.DiscountPercent,
		Active:            m.Active,
		ValidFrom:         m.ValidFrom,
		ValidTo:           m.ValidTo,
	}
}

// CouponModelFromDomain creates a persistence model from a domain Coupon
func CouponModelFromDomain(c *cart.Coupon) *CouponModel {
	m := &CouponModel{
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		Active:          c.Active,
		ValidFrom:       c.ValidFrom,
		ValidTo:         c.ValidTo,
	}
	m.SetRoot(c.BaseAggregateRoot)
	return m
}
