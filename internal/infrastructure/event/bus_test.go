package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sampleEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

func newSampleEvent(eventType string) *sampleEvent {
	return &sampleEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New()),
		Note:            "sample",
	}
}

type recordingHandler struct {
	types []string
	err   error
	panic bool

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newRecordingHandler(types ...string) *recordingHandler {
	return &recordingHandler{types: types}
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, e)
	h.mu.Unlock()
	if h.panic {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	created := newRecordingHandler("OrderCreated")
	other := newRecordingHandler("PaymentFailed")
	bus.Subscribe(created)
	bus.Subscribe(other)

	require.NoError(t, bus.Publish(context.Background(),
		newSampleEvent("OrderCreated"), newSampleEvent("OrderCreated")))

	assert.Equal(t, 2, created.count())
	assert.Equal(t, 0, other.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newRecordingHandler("OrderCreated")
	bus.Subscribe(h, "ShipmentStatusChanged")

	_ = bus.Publish(context.Background(), newSampleEvent("OrderCreated"), newSampleEvent("ShipmentStatusChanged"))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_FailuresDoNotStopOtherHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newRecordingHandler("OrderCreated")
	failing.err = errors.New("smtp down")
	panicking := newRecordingHandler("OrderCreated")
	panicking.panic = true
	healthy := newRecordingHandler("OrderCreated")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newSampleEvent("OrderCreated"))

	require.NoError(t, err)
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newRecordingHandler("OrderCreated")
	bus.Subscribe(h)

	_ = bus.Publish(context.Background(), newSampleEvent("OrderCreated"))
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), newSampleEvent("OrderCreated"))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_AsyncStopWaitsForHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsync(true), WithHandlerTimeout(time.Second))
	h := newRecordingHandler()
	bus.Subscribe(h)

	for i := 0; i < 20; i++ {
		require.NoError(t, bus.Publish(context.Background(), newSampleEvent("OrderCreated")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.Equal(t, 20, h.count())

	require.NoError(t, bus.Publish(context.Background(), newSampleEvent("OrderCreated")))
	assert.Equal(t, 20, h.count(), "stopped bus drops events")

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newSampleEvent("OrderCreated")))
	require.NoError(t, bus.Stop(ctx))
	assert.Equal(t, 21, h.count())
}
