package payment

import (
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MpesaInput starts an STK push for an order
type MpesaInput struct {
	OrderID     uuid.UUID
	Amount      decimal.Decimal
	PhoneNumber string
}

// BankInput submits proof of a bank transfer
type BankInput struct {
	OrderID         uuid.UUID
	Amount          decimal.Decimal
	ReferenceNumber string
	Receipt         *appshared.Upload
}

// ListFilter contains the payment list query
type ListFilter struct {
	Status   string
	Method   string
	Page     int
	PageSize int
}

// LogResponse represents a payment log entry
type LogResponse struct {
	ID        uuid.UUID `json:"id"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentResponse represents a payment with its logs
type PaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	OrderID           uuid.UUID       `json:"order"`
	UserID            *uuid.UUID      `json:"user"`
	Method            string          `json:"method"`
	Amount            decimal.Decimal `json:"amount"`
	TransactionID     string          `json:"transaction_id"`
	Status            string          `json:"status"`
	PhoneNumber       string          `json:"phone_number,omitempty"`
	MerchantRequestID string          `json:"merchant_request_id,omitempty"`
	CheckoutRequestID string          `json:"checkout_request_id,omitempty"`
	ResultCode        *int            `json:"result_code"`
	ResultDescription string          `json:"result_description"`
	ReferenceNumber   string          `json:"reference_number,omitempty"`
	ReceiptImage      string          `json:"receipt_image,omitempty"`
	Logs              []LogResponse   `json:"logs"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ListResult is a page of payments
type ListResult struct {
	Payments []PaymentResponse
	Total    int64
	Page     int
	PageSize int
}

// ToPaymentResponse converts a domain payment; the receipt key becomes a URL
func ToPaymentResponse(p *payment.Payment, storage appshared.ObjectStorage) PaymentResponse {
	resp := PaymentResponse{
		ID:                p.ID,
		OrderID:           p.OrderID,
		UserID:            p.UserID,
		Method:            string(p.Method),
		Amount:            p.Amount,
		TransactionID:     p.TransactionID,
		Status:            string(p.Status),
		PhoneNumber:       p.PhoneNumber,
		MerchantRequestID: p.MerchantRequestID,
		CheckoutRequestID: p.CheckoutRequestID,
		ResultCode:        p.ResultCode,
		ResultDescription: p.ResultDescription,
		ReferenceNumber:   p.ReferenceNumber,
		ReceiptImage:      storage.URL(p.ReceiptImage),
		Logs:              make([]LogResponse, 0, len(p.Logs)),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	for _, l := range p.Logs {
		resp.Logs = append(resp.Logs, LogResponse{ID: l.ID, Payload: l.Payload, CreatedAt: l.CreatedAt})
	}
	return resp
}
