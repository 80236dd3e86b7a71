package models

import (
	"time"

	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	AggregateModel
	UserID            *uuid.UUID          `gorm:"type:uuid;index"`
	Email             string              `gorm:"type:varchar(254);not null"`
	FullName          string              `gorm:"type:varchar(255);not null"`
	PhoneNumber       string              `gorm:"type:varchar(20)"`
	ShippingAddress   string              `gorm:"type:text"`
	BillingAddress    string              `gorm:"type:text"`
	ShippingAddressID *uuid.UUID          `gorm:"type:uuid"`
	ShippingMethodID  *uuid.UUID          `gorm:"type:uuid"`
	Status            order.Status        `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod     order.PaymentMethod `gorm:"type:varchar(20);not null;default:'mpesa'"`
	PaymentID         string              `gorm:"type:varchar(100)"`
	PaymentStatus     order.PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Subtotal          decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	Discount          decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0"`
	ShippingCost      decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0"`
	Total             decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	CouponCode        string              `gorm:"type:varchar(50)"`
	TrackingNumber    string              `gorm:"type:varchar(100)"`
	EstimatedDelivery *time.Time
	Items             []OrderItemModel    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History           []OrderHistoryModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is a line snapshot of an order
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Image       string          `gorm:"type:varchar(500)"`
	Quantity    int             `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderHistoryModel is an append-only order status change
type OrderHistoryModel struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	OldStatus order.Status `gorm:"type:varchar(20)"`
	NewStatus order.Status `gorm:"type:varchar(20);not null"`
	ChangedAt time.Time    `gorm:"not null;index"`
	Note      string       `gorm:"type:text"`
	ChangedBy *uuid.UUID   `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (OrderHistoryModel) TableName() string {
	return "order_status_history"
}

// ToDomain converts a history row to its domain form
func (m *OrderHistoryModel) ToDomain() order.HistoryEntry {
	return order.HistoryEntry{
		ID:        m.ID,
		OrderID:   m.OrderID,
		OldStatus: m.OldStatus,
		NewStatus: m.NewStatus,
		ChangedAt: m.ChangedAt,
		Note:      m.Note,
		ChangedBy: m.ChangedBy,
	}
}

// OrderHistoryModelFromDomain creates a history row from a domain entry
func OrderHistoryModelFromDomain(h order.HistoryEntry) OrderHistoryModel {
	return OrderHistoryModel{
		ID:        h.ID,
		OrderID:   h.OrderID,
		OldStatus: h.OldStatus,
		NewStatus: h.NewStatus,
		ChangedAt: h.ChangedAt,
		Note:      h.Note,
		ChangedBy: h.ChangedBy,
	}
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.Root(),
		UserID:            m.UserID,
		Email:             m.Email,
		FullName:          m.FullName,
		PhoneNumber:       m.PhoneNumber,
		ShippingAddress:   m.ShippingAddress,
		BillingAddress:    m.BillingAddress,
		ShippingAddressID: m.ShippingAddressID,
		ShippingMethodID:  m.ShippingMethodID,
		Status:            m.Status,
		PaymentMethod:     m.PaymentMethod,
		PaymentID:         m.PaymentID,
		PaymentStatus:     m.PaymentStatus,
		Subtotal:          m.Subtotal,
		Discount:          m.Discount,
		ShippingCost:      m.ShippingCost,
		Total:             m.Total,
		CouponCode:        m.CouponCode,
		TrackingNumber:    m.TrackingNumber,
		EstimatedDelivery: m.EstimatedDelivery,
		Items:             make([]order.OrderItem, 0, len(m.Items)),
		History:           make([]order.HistoryEntry, 0, len(m.History)),
	}
	for _, item := range m.Items {
		o.Items = append(o.Items, order.OrderItem{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Image:       item.Image,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Subtotal:    item.Subtotal,
		})
	}
	for _, h := range m.History {
		o.History = append(o.History, h.ToDomain())
	}
	return o
}

// OrderModelFromDomain creates a persistence model from a domain Order.
// Items and history are left to the repository.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		UserID:            o.UserID,
		Email:             o.Email,
		FullName:          o.FullName,
		PhoneNumber:       o.PhoneNumber,
		ShippingAddress:   o.ShippingAddress,
		BillingAddress:    o.BillingAddress,
		ShippingAddressID: o.ShippingAddressID,
		ShippingMethodID:  o.ShippingMethodID,
		Status:            o.Status,
		PaymentMethod:     o.PaymentMethod,
		PaymentID:         o.PaymentID,
		PaymentStatus:     o.PaymentStatus,
		Subtotal:          o.Subtotal,
		Discount:          o.Discount,
		ShippingCost:      o.ShippingCost,
		Total:             o.Total,
		CouponCode:        o.CouponCode,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
	}
	m.SetRoot(o.BaseAggregateRoot)
	return m
}

// OrderItemModelsFromDomain converts order lines for insertion
func OrderItemModelsFromDomain(o *order.Order) []OrderItemModel {
	items := make([]OrderItemModel, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemModel{
			ID:          item.ID,
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Image:       item.Image,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Subtotal:    item.Subtotal,
		})
	}
	return items
}
