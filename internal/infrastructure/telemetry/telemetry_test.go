package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adfinitum/backend/internal/infrastructure/config"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Meter("test"))
	assert.Nil(t, p.LoggerProvider())

	base := zap.NewNop()
	assert.Same(t, base, p.BridgeLogger(base, zapcore.InfoLevel))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestBusinessMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOrderCreated(ctx, "mpesa", decimal.NewFromInt(3200))
	bm.RecordOrderCreated(ctx, "bank", decimal.NewFromInt(800))
	bm.RecordPayment(ctx, "mpesa", "successful")
	bm.RecordTransition(ctx, "order", "pending", "paid")
	bm.RecordRegistration(ctx)

	metrics := collect(t, reader)

	orders, ok := metrics["adf_orders_created_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range orders.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	value, ok := metrics["adf_order_value"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var sum float64
	for _, dp := range value.DataPoints {
		sum += dp.Sum
	}
	assert.InDelta(t, 4000, sum, 0.001)

	assert.Contains(t, metrics, "adf_payments_total")
	assert.Contains(t, metrics, "adf_status_transitions_total")
	assert.Contains(t, metrics, "adf_user_registrations_total")
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	_, err := NewBusinessMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestHTTPMetrics_Handler(t *testing.T) {
	m := NewHTTPMetrics()

	done := m.Begin()
	done("GET", "/api/v1/products", 200)
	m.Begin()("POST", "", 404)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, text, `adf_http_requests_total{method="GET",route="/api/v1/products",status="200"} 1`)
	assert.Contains(t, text, `route="unmatched"`)
	assert.Contains(t, text, "adf_http_requests_in_flight 0")
	assert.True(t, strings.Contains(text, "go_goroutines"))
}

type traced struct {
	ID   uint
	Name string
}

func TestSlowQueryCallback_FlagsParentSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&traced{}))
	require.NoError(t, (&slowQueryCallback{thresh: time.Nanosecond}).register(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "checkout")
	require.NoError(t, db.WithContext(ctx).Create(&traced{Name: "a"}).Error)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	attrs := map[string]bool{}
	for _, attr := range spans[0].Attributes() {
		attrs[string(attr.Key)] = true
	}
	assert.True(t, attrs["db.slow_query"])
	assert.True(t, attrs["db.rows_affected"])
	assert.True(t, attrs["db.sql.table"])
}

func TestRegisterDBTracing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	assert.NoError(t, RegisterDBTracing(db, DBTracingConfig{SlowQueryThresh: 200 * time.Millisecond}, zap.NewNop()))
}
