// Package printing generates PDF documents for orders.
package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrInvoicesDisabled is returned when no renderer is configured
var ErrInvoicesDisabled = shared.ErrInvalidState.WithMessage("Invoice rendering is disabled")

// DefaultLinkTTL is how long an invoice download link stays valid
const DefaultLinkTTL = 15 * time.Minute

// InvoiceRenderer turns an order into a PDF document
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, o *order.Order) ([]byte, error)
}

// InvoiceResponse points to a stored invoice
type InvoiceResponse struct {
	OrderID   uuid.UUID `json:"order_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Size      int       `json:"size"`
}

// InvoiceService renders, stores and links order invoices
type InvoiceService struct {
	renderer InvoiceRenderer
	orders   order.OrderRepository
	storage  appshared.ObjectStorage
	ttl      time.Duration
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. renderer may be nil, in
// which case every request fails with ErrInvoicesDisabled.
func NewInvoiceService(
	renderer InvoiceRenderer,
	orders order.OrderRepository,
	storage appshared.ObjectStorage,
	ttl time.Duration,
	logger *zap.Logger,
) *InvoiceService {
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{renderer: renderer, orders: orders, storage: storage, ttl: ttl, logger: logger}
}

// Generate renders the invoice of an order visible to the actor and
// returns a time-limited download link
func (s *InvoiceService) Generate(ctx context.Context, actor appshared.Actor, orderID uuid.UUID) (*InvoiceResponse, error) {
	if s.renderer == nil {
		return nil, ErrInvoicesDisabled
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "generate",
		attribute.String("order.id", orderID.String()))
	defer span.End()

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

	pdf, err := s.renderer.RenderInvoice(ctx, o)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	key := InvoiceKey(o.ID)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(pdf), int64(len(pdf)), "application/pdf"); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("store invoice: %w", err)
	}
	url, expiresAt, err := s.storage.PresignedURL(ctx, key, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign invoice url: %w", err)
	}

	s.logger.Info("Invoice generated",
		zap.String("order_id", o.ID.String()),
		zap.Int("bytes", len(pdf)),
	)
	return &InvoiceResponse{OrderID: o.ID, URL: url, ExpiresAt: expiresAt, Size: len(pdf)}, nil
}

// InvoiceKey is the storage key of an order's invoice
func InvoiceKey(orderID uuid.UUID) string {
	return "invoices/" + orderID.String() + ".pdf"
}
