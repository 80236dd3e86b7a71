// Package middleware provides HTTP middleware for the commerce API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds request IDs taken from client headers.
const MaxRequestIDLength = 128

// Span attribute keys added on top of otelgin's semantic conventions
const (
	AttrRequestID   = "adf.request_id"
	AttrUserID      = "adf.user_id"
	AttrCaller      = "adf.caller"
	AttrCartSession = "adf.cart_session"
)

// TracingConfig configures TracingWithConfig.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig wraps otelgin. Spans are named "GET /api/v1/orders/:id"
// and carry the request id; caller attributes are added later by
// TracingAttributeInjector once authentication has run.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector tags the active span with who is calling.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(callerAttributes(c)...)
		}
		c.Next()
	}
}

func callerAttributes(c *gin.Context) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(AttrCaller, callerClass(c))}
	if id := getRequestIDFromContext(c); id != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, id))
	}
	if id := GetJWTUserID(c); id != "" {
		attrs = append(attrs, attribute.String(AttrUserID, id))
	}
	if sid := GetSessionID(c); sid != "" {
		attrs = append(attrs, attribute.String(AttrCartSession, sid))
	}
	return attrs
}

// SpanErrorMarker sets the span status to Error for 4xx and 5xx responses.
// Mount it after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		status := c.Writer.Status()
		if !span.IsRecording() || status < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
