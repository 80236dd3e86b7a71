package models

import (
	"time"

	"github.com/adfinitum/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment aggregate
type PaymentModel struct {
	AggregateModel
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	UserID            *uuid.UUID      `gorm:"type:uuid;index"`
	Method            payment.Method  `gorm:"type:varchar(20);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TransactionID     string          `gorm:"type:varchar(100)"`
	Status            payment.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	PhoneNumber       string          `gorm:"type:varchar(20)"`
	MerchantRequestID string          `gorm:"type:varchar(100)"`
	CheckoutRequestID string          `gorm:"type:varchar(100);index"`
	ResultCode        *int
	ResultDescription string            `gorm:"type:text"`
	ReferenceNumber   string            `gorm:"type:varchar(100)"`
	ReceiptImage      string            `gorm:"type:varchar(500)"`
	Logs              []PaymentLogModel `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// PaymentLogModel stores a raw gateway payload or status change
type PaymentLogModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Payload   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentLogModel) TableName() string {
	return "payment_logs"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *payment.Payment {
	p := &payment.Payment{
		BaseAggregateRoot: m.Root(),
		OrderID:           m.OrderID,
		UserID:            m.UserID,
		Method:            m.Method,
		Amount:            m.Amount,
		TransactionID:     m.TransactionID,
		Status:            m.Status,
		PhoneNumber:       m.PhoneNumber,
		MerchantRequestID: m.MerchantRequestID,
		CheckoutRequestID: m.CheckoutRequestID,
		ResultCode:        m.ResultCode,
		ResultDescription: m.ResultDescription,
		ReferenceNumber:   m.ReferenceNumber,
		ReceiptImage:      m.ReceiptImage,
		Logs:              make([]payment.Log, 0, len(m.Logs)),
	}
	for _, l := range m.Logs {
		p.Logs = append(p.Logs, payment.Log{
			ID:        l.ID,
			PaymentID: l.PaymentID,
			Payload:   l.Payload,
			CreatedAt: l.CreatedAt,
		})
	}
	return p
}

// PaymentModelFromDomain creates a persistence model from a domain Payment.
// Logs are left to the repository.
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{
		OrderID:           p.OrderID,
		UserID:            p.UserID,
		Method:            p.Method,
		Amount:            p.Amount,
		TransactionID:     p.TransactionID,
		Status:            p.Status,
		PhoneNumber:       p.PhoneNumber,
		MerchantRequestID: p.MerchantRequestID,
		CheckoutRequestID: p.CheckoutRequestID,
		ResultCode:        p.ResultCode,
		ResultDescription: p.ResultDescription,
		ReferenceNumber:   p.ReferenceNumber,
		ReceiptImage:      p.ReceiptImage,
	}
	m.SetRoot(p.BaseAggregateRoot)
	return m
}

// PaymentLogModelsFromDomain converts payment logs for insertion
func PaymentLogModelsFromDomain(p *payment.Payment) []PaymentLogModel {
	logs := make([]PaymentLogModel, 0, len(p.Logs))
	for _, l := range p.Logs {
		logs = append(logs, PaymentLogModel{ID: l.ID, PaymentID: p.ID, Payload: l.Payload, CreatedAt: l.CreatedAt})
	}
	return logs
}
