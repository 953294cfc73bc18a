package itinerary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/ptr"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayCount(t *testing.T) {
	assert.Equal(t, 1, DayCount(date(2025, 5, 1), date(2025, 5, 1)))
	assert.Equal(t, 3, DayCount(date(2025, 5, 1), date(2025, 5, 3)))
	assert.Equal(t, 1, DayCount(date(2025, 5, 3), date(2025, 5, 1)))
	assert.Equal(t, 2, DayCount(date(2025, 5, 31), date(2025, 6, 1)))
}

func TestDeriveDaysDefaults(t *testing.T) {
	days, err := DeriveDays(date(2025, 5, 1), date(2025, 5, 3), nil)
	require.NoError(t, err)
	require.Len(t, days, 3)

	for i, d := range days {
		assert.Equal(t, i+1, d.DayNumber)
		assert.Equal(t, date(2025, 5, 1+i), d.Date)
		assert.Equal(t, DefaultDayTitle(i+1), d.Title)
		assert.Empty(t, d.Stops)
	}
}

func TestDeriveDaysRejectsInvertedRange(t *testing.T) {
	_, err := DeriveDays(date(2025, 5, 3), date(2025, 5, 1), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeriveDaysIsIdempotent(t *testing.T) {
	start, end := date(2025, 5, 1), date(2025, 5, 4)
	days, err := DeriveDays(start, end, nil)
	require.NoError(t, err)

	days[1].Title = "Napa"
	days[1].Notes = ptr.Ptr("lunch at noon")
	_, err = AddStop(days, 1, domain.StopTypeWinery)
	require.NoError(t, err)

	once, err := DeriveDays(start, end, days)
	require.NoError(t, err)
	twice, err := DeriveDays(start, end, once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, days, once)
}

func TestDeriveDaysShrinkThenRegrowRestoresDays(t *testing.T) {
	start, end := date(2025, 5, 1), date(2025, 5, 3)
	original, err := DeriveDays(start, end, nil)
	require.NoError(t, err)

	original[0].Title = "Arrival"
	_, err = AddStop(original, 0, domain.StopTypePickup)
	require.NoError(t, err)
	original[1].Title = "Sonoma"
	_, err = AddStop(original, 1, domain.StopTypeWinery)
	require.NoError(t, err)

	shrunk, err := DeriveDays(start, date(2025, 5, 2), original)
	require.NoError(t, err)
	require.Len(t, shrunk, 2)

	regrown, err := DeriveDays(start, end, shrunk)
	require.NoError(t, err)
	require.Len(t, regrown, 3)

	assert.Equal(t, original[0], regrown[0])
	assert.Equal(t, original[1], regrown[1])
	assert.Equal(t, DefaultDayTitle(3), regrown[2].Title)
}

func TestDeriveDaysShiftsDatesButKeepsContent(t *testing.T) {
	days, err := DeriveDays(date(2025, 5, 1), date(2025, 5, 2), nil)
	require.NoError(t, err)
	days[0].Title = "Wine day"

	shifted, err := DeriveDays(date(2025, 6, 10), date(2025, 6, 11), days)
	require.NoError(t, err)

	assert.Equal(t, "Wine day", shifted[0].Title)
	assert.Equal(t, date(2025, 6, 10), shifted[0].Date)
	assert.Equal(t, date(2025, 5, 1), days[0].Date)
}

func TestAddStopDefaults(t *testing.T) {
	days, err := DeriveDays(date(2025, 5, 1), date(2025, 5, 1), nil)
	require.NoError(t, err)

	_, err = AddStop(days, 0, domain.StopTypePickup)
	require.NoError(t, err)
	stop, err := AddStop(days, 0, domain.StopTypeWinery)
	require.NoError(t, err)

	assert.Equal(t, 2, stop.StopOrder)
	assert.Equal(t, 60, stop.DurationMinutes)
	assert.EqualValues(t, 0, stop.FlatCost)
	assert.EqualValues(t, 0, stop.PerPersonCost)
	assert.Equal(t, domain.ReservationPending, stop.ReservationStatus)

	_, err = AddStop(days, 3, domain.StopTypePickup)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRemoveStopRenumbers(t *testing.T) {
	days, err := DeriveDays(date(2025, 5, 1), date(2025, 5, 1), nil)
	require.NoError(t, err)
	for _, st := range []domain.StopType{domain.StopTypePickup, domain.StopTypeWinery, domain.StopTypeRestaurant, domain.StopTypeDropoff} {
		_, err = AddStop(days, 0, st)
		require.NoError(t, err)
	}

	require.NoError(t, RemoveStop(days, 0, 1))

	require.Len(t, days[0].Stops, 3)
	assert.NoError(t, CheckStopOrder(days[0]))
	assert.Equal(t, domain.StopTypeRestaurant, days[0].Stops[1].Type)
	assert.Equal(t, 2, days[0].Stops[1].StopOrder)

	assert.ErrorIs(t, RemoveStop(days, 0, 5), domain.ErrValidation)
}

func TestMoveStop(t *testing.T) {
	days, err := DeriveDays(date(2025, 5, 1), date(2025, 5, 1), nil)
	require.NoError(t, err)
	for _, st := range []domain.StopType{domain.StopTypePickup, domain.StopTypeWinery, domain.StopTypeDropoff} {
		_, err = AddStop(days, 0, st)
		require.NoError(t, err)
	}

	require.NoError(t, MoveStop(days, 0, 2, 0))

	types := []domain.StopType{days[0].Stops[0].Type, days[0].Stops[1].Type, days[0].Stops[2].Type}
	assert.Equal(t, []domain.StopType{domain.StopTypeDropoff, domain.StopTypePickup, domain.StopTypeWinery}, types)
	assert.NoError(t, CheckStopOrder(days[0]))
}

func TestCheckStopOrderDetectsGap(t *testing.T) {
	day := domain.Day{DayNumber: 1, Stops: []domain.Stop{{StopOrder: 1}, {StopOrder: 3}}}
	assert.ErrorIs(t, CheckStopOrder(day), domain.ErrValidation)

	Renumber(&day)
	assert.NoError(t, CheckStopOrder(day))
}

func TestBuilderBuildsValidItinerary(t *testing.T) {
	winery := domain.NewStop(domain.StopTypeWinery, 0)
	require.NoError(t, winery.BindVenue(11))
	winery.FlatCost = 20000

	pickup := domain.NewStop(domain.StopTypePickup, 0)
	require.NoError(t, pickup.SetCustomPlace("Hotel lobby", "1 Main st"))

	it, err := NewBuilder(date(2025, 5, 1), date(2025, 5, 2), 6).
		DayDetails(0, "Napa", nil).
		AddStop(0, pickup).
		AddStop(0, winery).
		AddGuest(domain.Guest{Name: "Ann", IsPrimary: true}).
		AddGuest(domain.Guest{Name: "Bob"}).
		AddInclusion(domain.Inclusion{Kind: domain.InclusionChauffeur, Quantity: 8, UnitPrice: 9500}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 6, it.PartySize())
	require.Len(t, it.Days(), 2)
	assert.Equal(t, "Napa", it.Days()[0].Title)
	assert.Equal(t, 2, it.Days()[0].Stops[1].StopOrder)
	assert.Equal(t, []domain.VenueRef{{Kind: domain.VenueKindWinery, VenueID: 11}}, it.VenueRefs())

	days := it.Days()
	days[0].Title = "mutated"
	assert.Equal(t, "Napa", it.Days()[0].Title)
}

func TestBuilderRejects(t *testing.T) {
	start, end := date(2025, 5, 1), date(2025, 5, 2)

	tests := []struct {
		name    string
		builder *Builder
		field   string
	}{
		{
			name: "two primary guests",
			builder: NewBuilder(start, end, 2).
				AddGuest(domain.Guest{Name: "A", IsPrimary: true}).
				AddGuest(domain.Guest{Name: "B", IsPrimary: true}),
			field: "guest.is_primary",
		},
		{
			name: "inclusion without quantity",
			builder: NewBuilder(start, end, 2).
				AddInclusion(domain.Inclusion{Kind: domain.InclusionCustom, Quantity: 0, UnitPrice: 100}),
			field: "inclusion.quantity",
		},
		{
			name:    "negative stop cost",
			builder: NewBuilder(start, end, 2).AddStop(0, domain.Stop{Type: domain.StopTypeActivity, DurationMinutes: 60, FlatCost: -1}),
			field:   "flat_cost",
		},
		{
			name:    "zero party",
			builder: NewBuilder(start, end, 0),
			field:   "party_size",
		},
		{
			name:    "stop on missing day",
			builder: NewBuilder(start, end, 2).AddStop(5, domain.NewStop(domain.StopTypePickup, 0)),
			field:   "day_index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}
