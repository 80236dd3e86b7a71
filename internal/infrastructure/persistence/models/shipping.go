package models

import (
	"time"

	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingAddressModel is the persistence model for a delivery address
type ShippingAddressModel struct {
	BaseModel
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName      string    `gorm:"type:varchar(255);not null"`
	PhoneNumber   string    `gorm:"type:varchar(20);not null"`
	Email         string    `gorm:"type:varchar(254)"`
	Country       string    `gorm:"type:varchar(100);not null;default:'Kenya'"`
	City          string    `gorm:"type:varchar(100);not null"`
	PostalCode    string    `gorm:"type:varchar(20)"`
	StreetAddress string    `gorm:"type:varchar(255);not null"`
	Landmark      string    `gorm:"type:varchar(255)"`
	IsDefault     bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ShippingAddressModel) TableName() string {
	return "shipping_addresses"
}

// ToDomain converts the persistence model to a domain Address
func (m *ShippingAddressModel) ToDomain() *shipping.Address {
	return &shipping.Address{
		BaseEntity:    m.BaseModel.Entity(),
		UserID:        m.UserID,
		FullName:      m.FullName,
		PhoneNumber:   m.PhoneNumber,
		Email:         m.Email,
		Country:       m.Country,
		City:          m.City,
		PostalCode:    m.PostalCode,
		StreetAddress: m.StreetAddress,
		Landmark:      m.Landmark,
		IsDefault:     m.IsDefault,
	}
}

// ShippingAddressModelFromDomain creates a persistence model from a domain Address
func ShippingAddressModelFromDomain(a *shipping.Address) *ShippingAddressModel {
	m := &ShippingAddressModel{
		UserID:        a.UserID,
		FullName:      a.FullName,
		PhoneNumber:   a.PhoneNumber,
		Email:         a.Email,
		Country:       a.Country,
		City:          a.City,
		PostalCode:    a.PostalCode,
		StreetAddress: a.StreetAddress,
		Landmark:      a.Landmark,
		IsDefault:     a.IsDefault,
	}
	m.SetEntity(a.BaseEntity)
	return m
}

// ShippingMethodModel is the persistence model for a delivery method
type ShippingMethodModel struct {
	BaseModel
	Name          string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description   string          `gorm:"type:text"`
	BaseCost      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CostPerKm     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	EstimatedDays int             `gorm:"not null;default:3"`
	IsActive      bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShippingMethodModel) TableName() string {
	return "shipping_methods"
}

// ToDomain converts the persistence model to a domain Method
func (m *ShippingMethodModel) ToDomain() *shipping.Method {
	return &shipping.Method{
		BaseEntity:    m.BaseModel.Entity(),
		Name:          m.Name,
		Description:   m.Description,
		BaseCost:      m.BaseCost,
		CostPerKm:     m.CostPerKm,
		EstimatedDays: m.EstimatedDays,
		IsActive:      m.IsActive,
	}
}

// ShippingMethodModelFromDomain creates a persistence model from a domain Method
func ShippingMethodModelFromDomain(s *shipping.Method) *ShippingMethodModel {
	m := &ShippingMethodModel{
		Name:          s.Name,
		Description:   s.Description,
		BaseCost:      s.BaseCost,
		CostPerKm:     s.CostPerKm,
		EstimatedDays: s.EstimatedDays,
		IsActive:      s.IsActive,
	}
	m.SetEntity(s.BaseEntity)
	return m
}

// ShipmentModel is the persistence model for the Shipment aggregate
type ShipmentModel struct {
	AggregateModel
	OrderID        uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	AddressID      uuid.UUID            `gorm:"column:shipping_address_id;type:uuid;not null"`
	MethodID       *uuid.UUID           `gorm:"column:shipping_method_id;type:uuid"`
	CourierName    string               `gorm:"type:varchar(100)"`
	TrackingNumber string               `gorm:"type:varchar(100);index"`
	Status         shipping.Status      `gorm:"type:varchar(20);not null;default:'pending';index"`
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	Address        *ShippingAddressModel  `gorm:"foreignKey:AddressID"`
	Method         *ShippingMethodModel   `gorm:"foreignKey:MethodID"`
	History        []ShipmentHistoryModel `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ShipmentHistoryModel is an append-only shipment status change
type ShipmentHistoryModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	ShipmentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OldStatus  shipping.Status `gorm:"type:varchar(20)"`
	NewStatus  shipping.Status `gorm:"type:varchar(20);not null"`
	ChangedAt  time.Time       `gorm:"not null;index"`
	Note       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ShipmentHistoryModel) TableName() string {
	return "shipment_status_history"
}

// ToDomain converts a history row to its domain form
func (m *ShipmentHistoryModel) ToDomain() shipping.HistoryEntry {
	return shipping.HistoryEntry{
		ID:         m.ID,
		ShipmentID: m.ShipmentID,
		OldStatus:  m.OldStatus,
		NewStatus:  m.NewStatus,
		ChangedAt:  m.ChangedAt,
		Note:       m.Note,
	}
}

// ShipmentHistoryModelFromDomain creates a history row from a domain entry
func ShipmentHistoryModelFromDomain(h shipping.HistoryEntry) ShipmentHistoryModel {
	return ShipmentHistoryModel{
		ID:         h.ID,
		ShipmentID: h.ShipmentID,
		OldStatus:  h.OldStatus,
		NewStatus:  h.NewStatus,
		ChangedAt:  h.ChangedAt,
		Note:       h.Note,
	}
}

// ToDomain converts the persistence model to a domain Shipment
func (m *ShipmentModel) ToDomain() *shipping.Shipment {
	s := &shipping.Shipment{
		BaseAggregateRoot: m.Root(),
		OrderID:           m.OrderID,
		AddressID:         m.AddressID,
		MethodID:          m.MethodID,
		CourierName:       m.CourierName,
		TrackingNumber:    m.TrackingNumber,
		Status:            m.Status,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
		History:           make([]shipping.HistoryEntry, 0, len(m.History)),
	}
	if m.Address != nil {
		s.Address = m.Address.ToDomain()
	}
	if m.Method != nil {
		s.Method = m.Method.ToDomain()
	}
	for _, h := range m.History {
		s.History = append(s.History, h.ToDomain())
	}
	return s
}

// ShipmentModelFromDomain creates a persistence model from a domain Shipment.
// History is left to the repository.
func ShipmentModelFromDomain(s *shipping.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		OrderID:        s.OrderID,
		AddressID:      s.AddressID,
		MethodID:       s.MethodID,
		CourierName:    s.CourierName,
		TrackingNumber: s.TrackingNumber,
		Status:         s.Status,
		ShippedAt:      s.ShippedAt,
		DeliveredAt:    s.DeliveredAt,
	}
	m.SetRoot(s.BaseAggregateRoot)
	return m
}
