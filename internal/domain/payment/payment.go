package payment

import (
	"strings"
	"time"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is how a payment is made
type Method string

const (
	MethodMpesa Method = "mpesa"
	MethodBank  Method = "bank"
)

// Status is the lifecycle state of a payment
type Status string

const (
	StatusPending    Status = "pending"
	StatusInitiated  Status = "initiated"
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
	StatusReversed   Status = "reversed"
)

// IsFinal reports whether the payment has settled either way
func (s Status) IsFinal() bool {
	return s == StatusSuccessful || s == StatusFailed || s == StatusReversed
}

// Payment errors
var (
	ErrAlreadyPaid    = shared.NewDomainError("PAYMENT_EXISTS", "This order already has a payment.")
	ErrInvalidAmount  = shared.NewFieldError("amount", "Amount must be greater than 0.")
	ErrInvalidPhone   = shared.NewFieldError("phone_number", "Enter a valid Safaricom phone number.")
	ErrNotReviewable  = shared.ErrInvalidState.WithMessage("Only pending bank payments can be reviewed")
	ErrAlreadySettled = shared.ErrInvalidState.WithMessage("Payment has already been settled")
)

// Payment records money received, or expected, for one order
type Payment struct {
	shared.BaseAggregateRoot
	OrderID       uuid.UUID
	UserID        *uuid.UUID
	Method        Method
	Amount        decimal.Decimal
	TransactionID string
	Status        Status

	PhoneNumber       string
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        *int
	ResultDescription string

	ReferenceNumber string
	ReceiptImage    string

	Logs []Log
}

// Log keeps a raw gateway payload or status change against a payment
type Log struct {
	ID        uuid.UUID
	PaymentID uuid.UUID
	Payload   string
	CreatedAt time.Time
}

// NewMpesaPayment creates an initiated M-Pesa payment for an order
func NewMpesaPayment(orderID uuid.UUID, userID *uuid.UUID, amount decimal.Decimal, phone string) (*Payment, error) {
	amount, err := roundAmount(amount)
	if err != nil {
		return nil, err
	}
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	p := newPayment(orderID, userID, MethodMpesa, amount, StatusInitiated)
	p.PhoneNumber = normalized
	return p, nil
}

// NewBankPayment creates a bank transfer awaiting review
func NewBankPayment(orderID uuid.UUID, userID *uuid.UUID, amount decimal.Decimal, reference, receiptKey string) (*Payment, error) {
	amount, err := roundAmount(amount)
	if err != nil {
		return nil, err
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, shared.NewFieldError("reference_number", "This field is required.")
	}
	p := newPayment(orderID, userID, MethodBank, amount, StatusPending)
	p.ReferenceNumber = reference
	p.ReceiptImage = receiptKey
	return p, nil
}

// roundAmount rounds to cents; the rounded amount must stay positive
func roundAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

func newPayment(orderID uuid.UUID, userID *uuid.UUID, method Method, amount decimal.Decimal, status Status) *Payment {
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		UserID:            userID,
		Method:            method,
		Amount:            amount.Round(2),
		Status:            status,
		Logs:              make([]Log, 0),
	}
}

// AttachCheckout stores the identifiers returned by an STK push
func (p *Payment) AttachCheckout(merchantRequestID, checkoutRequestID string) {
	p.MerchantRequestID = merchantRequestID
	p.CheckoutRequestID = checkoutRequestID
	p.Touch()
}

// ApplyCallback settles an M-Pesa payment from a gateway callback.
// The raw payload is appended to the payment logs.
func (p *Payment) ApplyCallback(cb Callback, rawPayload string) error {
	if p.Status.IsFinal() {
		return ErrAlreadySettled
	}
	p.AppendLog(rawPayload)
	code := cb.ResultCode
	p.ResultCode = &code
	p.ResultDescription = cb.ResultDesc
	if cb.Succeeded() {
		p.TransactionID = cb.ReceiptNumber()
		p.changeStatus(StatusSuccessful)
		return nil
	}
	p.changeStatus(StatusFailed)
	return nil
}

// MarkFailed records a gateway failure
func (p *Payment) MarkFailed(reason string) {
	p.ResultDescription = reason
	p.changeStatus(StatusFailed)
}

// Review approves or rejects a pending bank transfer
func (p *Payment) Review(approve bool, note string) error {
	if p.Method != MethodBank || p.Status != StatusPending {
		return ErrNotReviewable
	}
	if note != "" {
		p.ResultDescription = note
	}
	if approve {
		p.changeStatus(StatusSuccessful)
	} else {
		p.changeStatus(StatusFailed)
	}
	return nil
}

// AppendLog adds a raw payload entry
func (p *Payment) AppendLog(payload string) {
	p.Logs = append(p.Logs, Log{
		ID:        uuid.New(),
		PaymentID: p.ID,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
}

// IsSuccessful reports whether the payment settled successfully
func (p *Payment) IsSuccessful() bool {
	return p.Status == StatusSuccessful
}

func (p *Payment) changeStatus(target Status) {
	old := p.Status
	p.Status = target
	p.Touch()
	p.AppendLog(`{"old_status":"` + string(old) + `","new_status":"` + string(target) + `"}`)
	switch target {
	case StatusSuccessful:
		p.AddDomainEvent(NewPaymentSucceededEvent(p))
	case StatusFailed:
		p.AddDomainEvent(NewPaymentFailedEvent(p))
	}
}
