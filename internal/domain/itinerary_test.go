package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopPlaceIsExclusive(t *testing.T) {
	s := NewStop(StopTypeWinery, 1)
	require.NoError(t, s.BindVenue(42))

	ref, ok := s.Venue()
	require.True(t, ok)
	assert.Equal(t, VenueRef{Kind: VenueKindWinery, VenueID: 42}, ref)

	assert.ErrorIs(t, s.SetCustomPlace("Picnic", "Main st"), ErrValidation)

	require.NoError(t, s.ChangeType(StopTypeActivity))
	assert.Nil(t, s.Place)

	require.NoError(t, s.SetCustomPlace("Balloon ride", "Airfield rd"))
	_, ok = s.Venue()
	assert.False(t, ok)

	require.NoError(t, s.ChangeType(StopTypeCustom))
	place, ok := s.Custom()
	require.True(t, ok)
	assert.Equal(t, "Balloon ride", place.Name)
}

func TestChangeTypeBetweenVenueKindsDropsReference(t *testing.T) {
	s := NewStop(StopTypeWinery, 1)
	require.NoError(t, s.BindVenue(7))

	require.NoError(t, s.ChangeType(StopTypeRestaurant))
	assert.Nil(t, s.Place)
	assert.NoError(t, s.Validate())
}

func TestStopValidate(t *testing.T) {
	s := NewStop(StopTypePickup, 1)
	assert.NoError(t, s.Validate())

	s.FlatCost = -1
	assert.ErrorIs(t, s.Validate(), ErrValidation)

	s = NewStop(StopTypePickup, 1)
	s.Place = VenueRef{Kind: VenueKindHotel, VenueID: 3}
	assert.ErrorIs(t, s.Validate(), ErrValidation)

	s = NewStop(StopTypePickup, 1)
	s.ReservationStatus = "maybe"
	var validationErr *ValidationError
	require.ErrorAs(t, s.Validate(), &validationErr)
	assert.Equal(t, "reservation_status", validationErr.Field)
}

func TestStopCost(t *testing.T) {
	s := NewStop(StopTypeWinery, 1)
	s.FlatCost = 20000
	s.PerPersonCost = 1000
	assert.EqualValues(t, 26000, s.Cost(6))
}

func TestDayCloneIsDeep(t *testing.T) {
	d := Day{DayNumber: 1, Title: "Day 1", Stops: []Stop{NewStop(StopTypePickup, 1)}}
	c := d.Clone()
	c.Stops[0].FlatCost = 500

	assert.EqualValues(t, 0, d.Stops[0].FlatCost)
}
