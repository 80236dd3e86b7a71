package event

import (
	"context"
	"encoding/json"

	"github.com/adfinitum/backend/internal/domain/identity"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/payment"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoggingSubscriber writes every domain event to the log
type LoggingSubscriber struct {
	logger *zap.Logger
}

// NewLoggingSubscriber creates a wildcard subscriber
func NewLoggingSubscriber(logger *zap.Logger) *LoggingSubscriber {
	return &LoggingSubscriber{logger: logger.Named("events")}
}

// EventTypes is empty, so the subscriber sees every event
func (s *LoggingSubscriber) EventTypes() []string { return nil }

// Handle logs the event envelope and its JSON payload
func (s *LoggingSubscriber) Handle(_ context.Context, e shared.DomainEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	s.logger.Info("domain event",
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_type", e.AggregateType()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.Time("occurred_at", e.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

// CommerceMetrics is the subset of telemetry.BusinessMetrics the metrics
// subscriber records into
type CommerceMetrics interface {
	RecordOrderCreated(ctx context.Context, paymentMethod string, total decimal.Decimal)
	RecordPayment(ctx context.Context, method, status string)
	RecordTransition(ctx context.Context, aggregate, from, to string)
	RecordRegistration(ctx context.Context)
}

// MetricsSubscriber turns domain events into business counters
type MetricsSubscriber struct {
	metrics CommerceMetrics
}

// NewMetricsSubscriber creates a subscriber recording into metrics
func NewMetricsSubscriber(metrics CommerceMetrics) *MetricsSubscriber {
	return &MetricsSubscriber{metrics: metrics}
}

// EventTypes lists the events that feed counters
func (s *MetricsSubscriber) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeOrderStatusChanged,
		shipping.EventTypeShipmentStatusChanged,
		payment.EventTypePaymentSucceeded,
		payment.EventTypePaymentFailed,
		identity.EventTypeUserRegistered,
	}
}

// Handle records the counter matching the event
func (s *MetricsSubscriber) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *order.OrderCreatedEvent:
		s.metrics.RecordOrderCreated(ctx, string(ev.PaymentMethod), ev.Total)
	case *order.OrderStatusChangedEvent:
		s.metrics.RecordTransition(ctx, "order", string(ev.OldStatus), string(ev.NewStatus))
	case *shipping.ShipmentStatusChangedEvent:
		s.metrics.RecordTransition(ctx, "shipment", string(ev.OldStatus), string(ev.NewStatus))
	case *payment.PaymentSucceededEvent:
		s.metrics.RecordPayment(ctx, string(ev.Method), "successful")
	case *payment.PaymentFailedEvent:
		s.metrics.RecordPayment(ctx, string(ev.Method), "failed")
	case *identity.UserRegisteredEvent:
		s.metrics.RecordRegistration(ctx)
	}
	return nil
}
