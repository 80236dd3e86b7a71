package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// MockEventHandler records what the bus delivers to it.
type MockEventHandler struct {
	types []string

	mu      sync.Mutex
	handled []shared.DomainEvent
	err     error
}

// NewMockEventHandler subscribes to types, or to everything when none given.
func NewMockEventHandler(types ...string) *MockEventHandler {
	return &MockEventHandler{types: types}
}

func (h *MockEventHandler) EventTypes() []string { return h.types }

// Handle records event and returns the configured error, if any.
func (h *MockEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of everything recorded so far.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

// OfType returns the recorded events of one type, in delivery order.
func (h *MockEventHandler) OfType(eventType string) []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, e := range h.Handled() {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// HandledCount is len(Handled()).
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError makes subsequent Handle calls fail with err.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Reset forgets recorded events and the configured error.
func (h *MockEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled, h.err = nil, nil
}

// AwaitType waits up to timeout for n events of eventType.
func (h *MockEventHandler) AwaitType(t *testing.T, eventType string, n int, timeout time.Duration) bool {
	t.Helper()
	return assert.Eventually(t, func() bool {
		return len(h.OfType(eventType)) >= n
	}, timeout, 10*time.Millisecond, "waiting for %d %s event(s)", n, eventType)
}

// TestEvent is a bare event raised by a fake "Test" aggregate.
type TestEvent struct {
	shared.BaseDomainEvent
}

// NewTestEvent raises eventType for aggregateID.
func NewTestEvent(eventType string, aggregateID uuid.UUID) *TestEvent {
	return &TestEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", aggregateID)}
}

// NewTestEventWithID is NewTestEvent with a fixed event id.
func NewTestEventWithID(eventID uuid.UUID, eventType string) *TestEvent {
	e := NewTestEvent(eventType, uuid.New())
	e.ID = eventID
	return e
}
