package shipping

import (
	"time"

	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressInput is the create/update payload for an address
type AddressInput struct {
	FullName      string
	PhoneNumber   string
	Email         string
	Country       string
	City          string
	PostalCode    string
	StreetAddress string
	Landmark      string
	IsDefault     bool
}

// AddressResponse represents a shipping address
type AddressResponse struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"full_name"`
	PhoneNumber   string    `json:"phone_number"`
	Email         string    `json:"email"`
	Country       string    `json:"country"`
	City          string    `json:"city"`
	PostalCode    string    `json:"postal_code"`
	StreetAddress string    `json:"street_address"`
	Landmark      string    `json:"landmark"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
}

// MethodInput is the create/update payload for a shipping method
type MethodInput struct {
	Name          string
	Description   string
	BaseCost      decimal.Decimal
	CostPerKm     decimal.Decimal
	EstimatedDays int
	IsActive      *bool
}

// MethodResponse represents a shipping method
type MethodResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	BaseCost      decimal.Decimal `json:"base_cost"`
	CostPerKm     decimal.Decimal `json:"cost_per_km"`
	EstimatedDays int             `json:"estimated_days"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ShipmentInput is the admin payload that opens a shipment
type ShipmentInput struct {
	OrderID        uuid.UUID
	AddressID      uuid.UUID
	MethodID       *uuid.UUID
	CourierName    string
	TrackingNumber string
}

// CarrierInput changes courier details of a shipment
type CarrierInput struct {
	CourierName    string
	TrackingNumber string
}

// ShipmentListFilter contains the shipment list query
type ShipmentListFilter struct {
	Status   string
	Page     int
	PageSize int
}

// HistoryResponse represents one shipment status change
type HistoryResponse struct {
	ID        uuid.UUID `json:"id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
	Note      string    `json:"note"`
}

// ShipmentResponse represents a shipment with its address, method and history
type ShipmentResponse struct {
	ID             uuid.UUID         `json:"id"`
	OrderID        uuid.UUID         `json:"order"`
	AddressID      uuid.UUID         `json:"address_id"`
	Address        *AddressResponse  `json:"address"`
	MethodID       *uuid.UUID        `json:"method_id"`
	Method         *MethodResponse   `json:"method"`
	CourierName    string            `json:"courier_name"`
	TrackingNumber string            `json:"tracking_number"`
	Status         string            `json:"status"`
	ShippedAt      *time.Time        `json:"shipped_at"`
	DeliveredAt    *time.Time        `json:"delivered_at"`
	History        []HistoryResponse `json:"history"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ShipmentListResult is a page of shipments
type ShipmentListResult struct {
	Shipments []ShipmentResponse
	Total     int64
	Page      int
	PageSize  int
}

// ToAddressResponse converts a domain address
func ToAddressResponse(a *shipping.Address) AddressResponse {
	return AddressResponse{
		ID:            a.ID,
		FullName:      a.FullName,
		PhoneNumber:   a.PhoneNumber,
		Email:         a.Email,
		Country:       a.Country,
		City:          a.City,
		PostalCode:    a.PostalCode,
		StreetAddress: a.StreetAddress,
		Landmark:      a.Landmark,
		IsDefault:     a.IsDefault,
		CreatedAt:     a.CreatedAt,
	}
}

// ToMethodResponse converts a domain shipping method
func ToMethodResponse(m *shipping.Method) MethodResponse {
	return MethodResponse{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		BaseCost:      m.BaseCost,
		CostPerKm:     m.CostPerKm,
		EstimatedDays: m.EstimatedDays,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
	}
}

// ToShipmentResponse converts a domain shipment
func ToShipmentResponse(s *shipping.Shipment) ShipmentResponse {
	resp := ShipmentResponse{
		ID:             s.ID,
		OrderID:        s.OrderID,
		AddressID:      s.AddressID,
		MethodID:       s.MethodID,
		CourierName:    s.CourierName,
		TrackingNumber: s.TrackingNumber,
		Status:         string(s.Status),
		ShippedAt:      s.ShippedAt,
		DeliveredAt:    s.DeliveredAt,
		History:        ToHistoryResponses(s.History),
		CreatedAt:      s.CreatedAt,
	}
	if s.Address != nil {
		a := ToAddressResponse(s.Address)
		resp.Address = &a
	}
	if s.Method != nil {
		m := ToMethodResponse(s.Method)
		resp.Method = &m
	}
	return resp
}

// ToHistoryResponses converts history entries, keeping their order
func ToHistoryResponses(entries []shipping.HistoryEntry) []HistoryResponse {
	result := make([]HistoryResponse, 0, len(entries))
	for _, h := range entries {
		result = append(result, HistoryResponse{
			ID:        h.ID,
			OldStatus: string(h.OldStatus),
			NewStatus: string(h.NewStatus),
			ChangedAt: h.ChangedAt,
			Note:      h.Note,
		})
	}
	return result
}

func (in AddressInput) details() shipping.AddressDetails {
	return shipping.AddressDetails{
		FullName:      in.FullName,
		PhoneNumber:   in.PhoneNumber,
		Email:         in.Email,
		Country:       in.Country,
		City:          in.City,
		PostalCode:    in.PostalCode,
		StreetAddress: in.StreetAddress,
		Landmark:      in.Landmark,
		IsDefault:     in.IsDefault,
	}
}
