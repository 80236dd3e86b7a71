package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestActor_CanAccess(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	assert.True(t, Actor{UserID: &owner}.CanAccess(&owner))
	assert.False(t, Actor{UserID: &other}.CanAccess(&owner))
	assert.True(t, Actor{UserID: &other, IsStaff: true}.CanAccess(&owner))
	assert.False(t, Actor{SessionID: "guest"}.CanAccess(&owner))
	assert.False(t, Actor{UserID: &owner}.CanAccess(nil))
}

func TestActor_OwnerFilter(t *testing.T) {
	id := uuid.New()
	assert.Nil(t, Actor{UserID: &id, IsStaff: true}.OwnerFilter())
	assert.Equal(t, &id, Actor{UserID: &id}.OwnerFilter())

	guest := Actor{SessionID: "s"}.OwnerFilter()
	if assert.NotNil(t, guest) {
		assert.Equal(t, uuid.Nil, *guest)
	}
}
