package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/payment"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Notes recorded on the order when a payment settles
const (
	NoteMpesaReceived = "Payment received via M-Pesa"
	NoteBankApproved  = "Bank transfer approved"
)

// callbackKeyPrefix namespaces processed callbacks in the idempotency store
const callbackKeyPrefix = "mpesa:callback:"

// PaymentService initiates, settles and reviews payments
type PaymentService struct {
	scope       appshared.TransactionScope
	payments    payment.Repository
	orders      order.OrderRepository
	gateway     payment.MobileMoneyGateway
	storage     appshared.ObjectStorage
	idempotency shared.IdempotencyStore
	events      shared.EventPublisher
	logger      *zap.Logger
	callbackTTL time.Duration
}

// NewPaymentService creates a new PaymentService. idempotency may be nil,
// in which case duplicate callbacks are only caught by the payment state.
func NewPaymentService(
	scope appshared.TransactionScope,
	payments payment.Repository,
	orders order.OrderRepository,
	gateway payment.MobileMoneyGateway,
	storage appshared.ObjectStorage,
	idempotency shared.IdempotencyStore,
	events shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		scope:       scope,
		payments:    payments,
		orders:      orders,
		gateway:     gateway,
		storage:     storage,
		idempotency: idempotency,
		events:      events,
		logger:      logger,
		callbackTTL: shared.CallbackReplayWindow,
	}
}

// List returns payments. Non-staff callers only see their own.
func (s *PaymentService) List(ctx context.Context, actor appshared.Actor, filter ListFilter) (*ListResult, error) {
	query := payment.Filter{
		UserID:   actor.OwnerFilter(),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if filter.Status != "" {
		status := payment.Status(filter.Status)
		query.Status = &status
	}
	if filter.Method != "" {
		method := payment.Method(filter.Method)
		query.Method = &method
	}
	payments, total, err := s.payments.FindAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	items := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, ToPaymentResponse(&payments[i], s.storage))
	}
	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	return &ListResult{Payments: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get returns a payment visible to the actor
func (s *PaymentService) Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(p.UserID) {
		return nil, shared.ErrNotFound
	}
	resp := ToPaymentResponse(p, s.storage)
	return &resp, nil
}

// InitiateMpesa records an initiated payment and sends an STK push to the
// customer's phone. A gateway failure marks the payment failed.
func (s *PaymentService) InitiateMpesa(ctx context.Context, actor appshared.Actor, input MpesaInput) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "initiate_mpesa",
		attribute.String("order.id", input.OrderID.String()))
	defer span.End()

	if s.gateway == nil {
		return nil, payment.ErrGatewayUnavailable
	}
	o, err := s.payableOrder(ctx, actor, input.OrderID)
	if err != nil {
		return nil, err
	}
	p, err := payment.NewMpesaPayment(o.ID, actor.UserID, input.Amount, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}

	resp, err := s.gateway.STKPush(ctx, payment.STKPushRequest{
		PhoneNumber:      p.PhoneNumber,
		Amount:           p.Amount,
		AccountReference: accountReference(o.ID),
		Description:      "Payment for order " + o.ID.String(),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("STK push failed",
			zap.String("payment_id", p.ID.String()),
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
		p.MarkFailed(err.Error())
		if saveErr := s.payments.Save(ctx, p); saveErr != nil {
			s.logger.Error("Failed to record STK push failure", zap.String("payment_id", p.ID.String()), zap.Error(saveErr))
		}
		appshared.PublishEvents(ctx, s.events, s.logger, p)
		if errors.Is(err, payment.ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}

	p.AttachCheckout(resp.MerchantRequestID, resp.CheckoutRequestID)
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}
	s.logger.Info("M-Pesa payment initiated",
		zap.String("payment_id", p.ID.String()),
		zap.String("checkout_request_id", p.CheckoutRequestID),
	)
	out := ToPaymentResponse(p, s.storage)
	return &out, nil
}

// HandleCallback settles an M-Pesa payment from a Daraja callback body.
// Unknown checkout ids and repeated deliveries are accepted and ignored.
func (s *PaymentService) HandleCallback(ctx context.Context, raw []byte) error {
	var envelope payment.CallbackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		s.logger.Warn("Malformed M-Pesa callback", zap.Error(err))
		return nil
	}
	cb := envelope.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		s.logger.Warn("M-Pesa callback without CheckoutRequestID")
		return nil
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "mpesa_callback",
		attribute.String("mpesa.checkout_request_id", cb.CheckoutRequestID),
		attribute.Int("mpesa.result_code", cb.ResultCode))
	defer span.End()

	key := callbackKeyPrefix + cb.CheckoutRequestID
	if s.idempotency != nil {
		done, err := s.idempotency.IsProcessed(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency lookup failed", zap.String("key", key), zap.Error(err))
		} else if done {
			s.logger.Info("Duplicate M-Pesa callback ignored", zap.String("checkout_request_id", cb.CheckoutRequestID))
			return nil
		}
	}

	var settled *payment.Payment
	var paidOrder *order.Order
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		p, err := repos.Payments().FindByCheckoutRequestID(ctx, cb.CheckoutRequestID)
		if err != nil {
			return err
		}
		if err := p.ApplyCallback(cb, string(raw)); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, p); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		settled = p

		o, err := repos.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return fmt.Errorf("find payment order: %w", err)
		}
		if p.IsSuccessful() {
			if err := o.MarkPaid(p.TransactionID, NoteMpesaReceived); err != nil {
				return err
			}
		} else {
			o.MarkPaymentFailed()
		}
		paidOrder = o
		return repos.Orders().Save(ctx, o)
	})
	switch {
	case errors.Is(err, shared.ErrNotFound):
		s.logger.Info("M-Pesa callback for unknown checkout", zap.String("checkout_request_id", cb.CheckoutRequestID))
		return nil
	case errors.Is(err, payment.ErrAlreadySettled):
		s.logger.Info("M-Pesa callback for settled payment ignored", zap.String("checkout_request_id", cb.CheckoutRequestID))
		return nil
	case err != nil:
		telemetry.RecordError(span, err)
		return err
	}

	if s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, key, s.callbackTTL); err != nil {
			s.logger.Warn("Failed to mark callback processed", zap.String("key", key), zap.Error(err))
		}
	}
	appshared.PublishEvents(ctx, s.events, s.logger, settled, paidOrder)
	s.logger.Info("M-Pesa callback processed",
		zap.String("payment_id", settled.ID.String()),
		zap.String("status", string(settled.Status)),
	)
	return nil
}

// SubmitBank stores a bank transfer receipt and records a payment awaiting review
func (s *PaymentService) SubmitBank(ctx context.Context, actor appshared.Actor, input BankInput) (*PaymentResponse, error) {
	o, err := s.payableOrder(ctx, actor, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, payment.ErrInvalidAmount
	}
	if input.Receipt == nil {
		return nil, shared.NewFieldError("receipt_image", "No file was submitted.")
	}
	if !appshared.AllowedImageTypes[input.Receipt.ContentType] && input.Receipt.ContentType != "application/pdf" {
		return nil, shared.NewFieldError("receipt_image", "Upload a valid image.")
	}

	key := appshared.ObjectKey("bank_receipts", input.Receipt.Filename)
	if err := s.storage.Upload(ctx, key, input.Receipt.Body, input.Receipt.Size, input.Receipt.ContentType); err != nil {
		return nil, fmt.Errorf("upload receipt: %w", err)
	}
	p, err := payment.NewBankPayment(o.ID, actor.UserID, input.Amount, input.ReferenceNumber, key)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		s.removeObject(ctx, key)
		return nil, fmt.Errorf("save payment: %w", err)
	}
	s.logger.Info("Bank transfer submitted",
		zap.String("payment_id", p.ID.String()),
		zap.String("order_id", o.ID.String()),
	)
	resp := ToPaymentResponse(p, s.storage)
	return &resp, nil
}

// Review approves or rejects a pending bank transfer. Approval marks the order paid.
func (s *PaymentService) Review(ctx context.Context, actor appshared.Actor, id uuid.UUID, approve bool, note string) (*PaymentResponse, error) {
	var reviewed *payment.Payment
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		p, err := repos.Payments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Review(approve, strings.TrimSpace(note)); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, p); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		reviewed = p

		o, err = repos.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return fmt.Errorf("find payment order: %w", err)
		}
		if approve {
			if err := o.MarkPaid(p.ReferenceNumber, NoteBankApproved); err != nil {
				return err
			}
		} else {
			o.MarkPaymentFailed()
		}
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	appshared.PublishEvents(ctx, s.events, s.logger, reviewed, o)

	s.logger.Info("Bank transfer reviewed",
		zap.String("payment_id", reviewed.ID.String()),
		zap.Bool("approved", approve),
		zap.Stringp("reviewer_id", reviewerID(actor)),
	)
	resp := ToPaymentResponse(reviewed, s.storage)
	return &resp, nil
}

// payableOrder loads an order the actor may pay for that has no payment yet
func (s *PaymentService) payableOrder(ctx context.Context, actor appshared.Actor, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	if !actor.CanAccess(o.UserID) {
		return nil, order.ErrOrderNotFound
	}
	exists, err := s.payments.ExistsForOrder(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("check order payment: %w", err)
	}
	if exists {
		return nil, payment.ErrAlreadyPaid
	}
	return o, nil
}

func (s *PaymentService) removeObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}

// accountReference is the order reference shown on the customer's handset.
// Daraja limits it to 12 characters.
func accountReference(orderID uuid.UUID) string {
	return strings.ToUpper(strings.ReplaceAll(orderID.String(), "-", "")[:12])
}

func reviewerID(actor appshared.Actor) *string {
	if actor.UserID == nil {
		return nil
	}
	id := actor.UserID.String()
	return &id
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
