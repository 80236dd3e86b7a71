package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Attribute keys used by the commerce counters
var (
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrPaymentStatus = attribute.Key("payment_status")
	AttrAggregate     = attribute.Key("aggregate")
	AttrFromStatus    = attribute.Key("from_status")
	AttrToStatus      = attribute.Key("to_status")
)

// BusinessMetrics records commerce counters: orders, order value,
// payments and status transitions
type BusinessMetrics struct {
	ordersCreated metric.Int64Counter
	orderValue    metric.Float64Histogram
	payments      metric.Int64Counter
	transitions   metric.Int64Counter
	registrations metric.Int64Counter
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{}
	var err error

	if bm.ordersCreated, err = meter.Int64Counter("adf_orders_created_total",
		metric.WithDescription("Orders created at checkout"), metric.WithUnit("{orders}")); err != nil {
		return nil, fmt.Errorf("orders counter: %w", err)
	}
	if bm.orderValue, err = meter.Float64Histogram("adf_order_value",
		metric.WithDescription("Order totals in KES"), metric.WithUnit("KES"),
		metric.WithExplicitBucketBoundaries(500, 1000, 2500, 5000, 10000, 25000, 50000, 100000)); err != nil {
		return nil, fmt.Errorf("order value histogram: %w", err)
	}
	if bm.payments, err = meter.Int64Counter("adf_payments_total",
		metric.WithDescription("Payments by method and outcome"), metric.WithUnit("{payments}")); err != nil {
		return nil, fmt.Errorf("payments counter: %w", err)
	}
	if bm.transitions, err = meter.Int64Counter("adf_status_transitions_total",
		metric.WithDescription("Order and shipment status transitions"), metric.WithUnit("{transitions}")); err != nil {
		return nil, fmt.Errorf("transitions counter: %w", err)
	}
	if bm.registrations, err = meter.Int64Counter("adf_user_registrations_total",
		metric.WithDescription("Accounts registered"), metric.WithUnit("{users}")); err != nil {
		return nil, fmt.Errorf("registrations counter: %w", err)
	}
	return bm, nil
}

// RecordOrderCreated counts a checkout and its total
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, paymentMethod string, total decimal.Decimal) {
	attrs := metric.WithAttributes(AttrPaymentMethod.String(paymentMethod))
	bm.ordersCreated.Add(ctx, 1, attrs)
	bm.orderValue.Record(ctx, total.InexactFloat64(), attrs)
}

// RecordPayment counts a payment outcome
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, method, status string) {
	bm.payments.Add(ctx, 1, metric.WithAttributes(
		AttrPaymentMethod.String(method),
		AttrPaymentStatus.String(status),
	))
}

// RecordTransition counts a status change on an order or shipment
func (bm *BusinessMetrics) RecordTransition(ctx context.Context, aggregate, from, to string) {
	bm.transitions.Add(ctx, 1, metric.WithAttributes(
		AttrAggregate.String(aggregate),
		AttrFromStatus.String(from),
		AttrToStatus.String(to),
	))
}

// RecordRegistration counts a new account
func (bm *BusinessMetrics) RecordRegistration(ctx context.Context) {
	bm.registrations.Add(ctx, 1)
}
