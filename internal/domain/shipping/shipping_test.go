package shipping

import (
	"testing"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	a, err := NewAddress(uuid.New(), AddressDetails{
		FullName:      "Jane Doe",
		PhoneNumber:   "0712345678",
		City:          "Nairobi",
		PostalCode:    "00100",
		StreetAddress: "Moi Avenue",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultCountry, a.Country)
	assert.Equal(t, "Jane Doe, Moi Avenue, Nairobi 00100, Kenya, 0712345678", a.Format())
}

func TestNewAddress_Validation(t *testing.T) {
	_, err := NewAddress(uuid.New(), AddressDetails{FullName: "Jane", PhoneNumber: "0712", City: "Nairobi"})
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "street_address", de.Field)
	assert.Equal(t, "VALIDATION_ERROR", de.Code)
}

func TestMethod(t *testing.T) {
	m, err := NewMethod("Express", "", decimal.RequireFromString("250"), decimal.RequireFromString("10"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultEstimatedDays, m.EstimatedDays)
	assert.True(t, m.IsActive)
	assert.True(t, m.CostFor(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(300)))

	_, err = NewMethod("Bad", "", decimal.NewFromInt(-1), decimal.Zero, 1)
	assert.ErrorIs(t, err, shared.NewFieldError("base_cost", ""))
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusShipped, true},
		{StatusShipped, StatusInTransit, true},
		{StatusOutForDelivery, StatusDelivered, true},
		{StatusInTransit, StatusCancelled, true},
		{StatusShipped, StatusProcessing, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, StatusPending, false},
		{StatusPending, Status("lost"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestShipment_HistoryIsAppendedOnEveryChange(t *testing.T) {
	s := NewShipment(uuid.New(), uuid.New(), nil, "G4S", "TRK-1")
	require.Len(t, s.History, 1)
	assert.Equal(t, Status(""), s.History[0].OldStatus)
	assert.Equal(t, StatusPending, s.History[0].NewStatus)

	require.NoError(t, s.TransitionTo(StatusShipped, "Left warehouse"))
	require.NotNil(t, s.ShippedAt)
	assert.Nil(t, s.DeliveredAt)

	require.NoError(t, s.TransitionTo(StatusDelivered, ""))
	require.NotNil(t, s.DeliveredAt)

	require.Len(t, s.History, 3)
	assert.Equal(t, StatusShipped, s.History[2].OldStatus)
	assert.Equal(t, StatusDelivered, s.History[2].NewStatus)
	for i, h := range s.History {
		assert.False(t, h.ChangedAt.IsZero(), "entry %d has no timestamp", i)
		assert.Equal(t, s.ID, h.ShipmentID)
	}
	assert.Len(t, s.GetDomainEvents(), 2)
}

func TestShipment_RejectedTransition(t *testing.T) {
	s := NewShipment(uuid.New(), uuid.New(), nil, "", "")
	require.NoError(t, s.TransitionTo(StatusCancelled, "Customer request"))

	err := s.TransitionTo(StatusShipped, "")
	assert.ErrorIs(t, err, ErrTransitionDenied)
	assert.ErrorIs(t, s.TransitionTo(Status("lost"), ""), ErrInvalidStatus)
	assert.Len(t, s.History, 2)
	assert.Equal(t, StatusCancelled, s.Status)
}
