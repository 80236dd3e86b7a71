package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	orders := newRecordingHandler("OrderCreated", "OrderStatusChanged")
	everything := newRecordingHandler()

	registry.Register(orders, orders.EventTypes()...)
	registry.Register(everything)

	assert.Len(t, registry.GetHandlers("OrderCreated"), 2)
	assert.Len(t, registry.GetHandlers("OrderStatusChanged"), 2)

	handlers := registry.GetHandlers("PaymentSucceeded")
	assert.Len(t, handlers, 1)
	assert.Same(t, everything, handlers[0])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newRecordingHandler("OrderCreated")
	second := newRecordingHandler("OrderCreated")
	everything := newRecordingHandler()

	registry.Register(first, "OrderCreated")
	registry.Register(second, "OrderCreated")
	registry.Register(everything)

	registry.Unregister(first)
	registry.Unregister(everything)

	handlers := registry.GetHandlers("OrderCreated")
	assert.Len(t, handlers, 1)
	assert.Same(t, second, handlers[0])

	registry.Unregister(second)
	assert.Empty(t, registry.GetHandlers("OrderCreated"))
	assert.Empty(t, registry.handlers)
}
