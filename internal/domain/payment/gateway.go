package payment

import (
	"context"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrGatewayUnavailable is returned when the mobile-money provider cannot be reached
var ErrGatewayUnavailable = shared.NewDomainError("GATEWAY_UNAVAILABLE", "Payment gateway is unavailable")

// STKPushRequest asks the customer's handset to authorise a payment
type STKPushRequest struct {
	PhoneNumber      string
	Amount           decimal.Decimal
	AccountReference string
	Description      string
}

// STKPushResponse holds the identifiers used to match the later callback
type STKPushResponse struct {
	MerchantRequestID   string
	CheckoutRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
}

// MobileMoneyGateway sends STK push requests
type MobileMoneyGateway interface {
	STKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error)
}
