package order

import (
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutInput is the checkout form
type CheckoutInput struct {
	CartID            uuid.UUID
	Email             string
	FullName          string
	PhoneNumber       string
	ShippingAddressID uuid.UUID
	ShippingMethodID  uuid.UUID
	PaymentMethod     string
	BillingAddress    string
}

// ListFilter contains the order list query
type ListFilter struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// ItemResponse represents an order line
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product"`
	ProductName string          `json:"product_name"`
	Image       string          `json:"image"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// HistoryResponse represents one status change
type HistoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	OldStatus string     `json:"old_status"`
	NewStatus string     `json:"new_status"`
	ChangedAt time.Time  `json:"changed_at"`
	Note      string     `json:"note"`
	ChangedBy *uuid.UUID `json:"changed_by"`
}

// OrderResponse represents an order with its lines and history
type OrderResponse struct {
	ID                uuid.UUID         `json:"id"`
	UserID            *uuid.UUID        `json:"user"`
	Email             string            `json:"email"`
	FullName          string            `json:"full_name"`
	PhoneNumber       string            `json:"phone_number"`
	ShippingAddress   string            `json:"shipping_address"`
	BillingAddress    string            `json:"billing_address"`
	ShippingAddressID *uuid.UUID        `json:"shipping_address_id"`
	ShippingMethodID  *uuid.UUID        `json:"shipping_method_id"`
	Status            string            `json:"status"`
	PaymentMethod     string            `json:"payment_method"`
	PaymentStatus     string            `json:"payment_status"`
	Subtotal          decimal.Decimal   `json:"subtotal"`
	Discount          decimal.Decimal   `json:"discount"`
	ShippingCost      decimal.Decimal   `json:"shipping_cost"`
	Total             decimal.Decimal   `json:"total"`
	CouponCode        string            `json:"coupon_code,omitempty"`
	TrackingNumber    string            `json:"tracking_number"`
	EstimatedDelivery *time.Time        `json:"estimated_delivery"`
	Items             []ItemResponse    `json:"items"`
	History           []HistoryResponse `json:"history"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ListResult is a page of orders
type ListResult struct {
	Orders   []OrderResponse
	Total    int64
	Page     int
	PageSize int
}

// ToOrderResponse converts a domain order; item image keys become URLs
func ToOrderResponse(o *order.Order, storage appshared.ObjectStorage) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		UserID:            o.UserID,
		Email:             o.Email,
		FullName:          o.FullName,
		PhoneNumber:       o.PhoneNumber,
		ShippingAddress:   o.ShippingAddress,
		BillingAddress:    o.BillingAddress,
		ShippingAddressID: o.ShippingAddressID,
		ShippingMethodID:  o.ShippingMethodID,
		Status:            string(o.Status),
		PaymentMethod:     string(o.PaymentMethod),
		PaymentStatus:     string(o.PaymentStatus),
		Subtotal:          o.Subtotal,
		Discount:          o.Discount,
		ShippingCost:      o.ShippingCost,
		Total:             o.Total,
		CouponCode:        o.CouponCode,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		Items:             make([]ItemResponse, 0, len(o.Items)),
		History:           ToHistoryResponses(o.History),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Image:       storage.URL(item.Image),
			Quantity:    item.Quantity,
			Price:       item.Price,
			Subtotal:    item.Subtotal,
		})
	}
	return resp
}

// ToHistoryResponses converts history entries, keeping their order
func ToHistoryResponses(entries []order.HistoryEntry) []HistoryResponse {
	result := make([]HistoryResponse, 0, len(entries))
	for _, h := range entries {
		result = append(result, HistoryResponse{
			ID:        h.ID,
			OldStatus: string(h.OldStatus),
			NewStatus: string(h.NewStatus),
			ChangedAt: h.ChangedAt,
			Note:      h.Note,
			ChangedBy: h.ChangedBy,
		})
	}
	return result
}
