package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseAggregateRoot_Touch(t *testing.T) {
	root := NewBaseAggregateRoot()
	require.Equal(t, 1, root.Version)
	assert.True(t, root.IsNew())

	created := root.CreatedAt
	time.Sleep(time.Millisecond)
	root.Touch()

	assert.Equal(t, 2, root.Version)
	assert.Equal(t, created, root.CreatedAt)
	assert.True(t, root.UpdatedAt.After(created))
	assert.False(t, root.IsNew())
}

func TestBaseEntity_TouchLeavesIdentity(t *testing.T) {
	e := NewBaseEntity()
	id := e.ID
	e.Touch()
	assert.Equal(t, id, e.ID)
}

func TestBaseAggregateRoot_PendingEvents(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.Empty(t, root.GetDomainEvents())

	first := NewBaseDomainEvent("OrderCreated", "Order", root.ID)
	second := NewBaseDomainEvent("OrderStatusChanged", "Order", uuid.New())
	root.AddDomainEvent(&first)
	root.AddDomainEvent(&second)

	events := root.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "OrderCreated", events[0].EventType())

	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}
