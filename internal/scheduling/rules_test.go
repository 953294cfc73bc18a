package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

// 2025-06-11 среда
var tourDay = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

func assignment(bookingID int64, date time.Time, start types.TimeString, minutes int) domain.Assignment {
	return domain.Assignment{
		BookingID:       bookingID,
		DriverID:        1,
		VehicleID:       1,
		TourDate:        date,
		EndDate:         date,
		StartTime:       start,
		DurationMinutes: minutes,
	}
}

func activeDriver() domain.Driver {
	return domain.Driver{ID: 1, Name: "Dana", IsActive: true}
}

func TestWeekBoundsStartsOnMonday(t *testing.T) {
	start, end := WeekBounds(tourDay)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), end)

	sundayStart, _ := WeekBounds(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, start, sundayStart)
}

func TestDriverDailyCap(t *testing.T) {
	tests := []struct {
		name           string
		workedMinutes  int
		requestMinutes int
		available      bool
	}{
		{name: "9.5h worked plus 1h exceeds cap", workedMinutes: 570, requestMinutes: 60, available: false},
		{name: "8h worked plus 2h is exactly at cap", workedMinutes: 480, requestMinutes: 120, available: true},
		{name: "fresh driver", workedMinutes: 0, requestMinutes: 600, available: true},
		{name: "fresh driver over cap", workedMinutes: 0, requestMinutes: 601, available: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var existing []domain.Assignment
			if tt.workedMinutes > 0 {
				existing = append(existing, assignment(100, tourDay, "06:00", tt.workedMinutes))
			}
			// окно запроса вечером, чтобы не было пересечений
			start, err := types.NewTimeStringFromMinutes(24*60 - tt.requestMinutes - 1)
			require.NoError(t, err)

			c := EvaluateDriver(activeDriver(), existing, NewRequest(tourDay, start, tt.requestMinutes, 4), DefaultCaps())

			assert.Equal(t, tt.available, c.Available, "reasons: %+v", c.Reasons)
			assert.Equal(t, tt.workedMinutes, c.MinutesToday)
			if !tt.available {
				_, ok := HasReason(c.Reasons, ReasonHoursTodayCap)
				assert.True(t, ok)
			}
		})
	}
}

func TestDriverWeeklyCap(t *testing.T) {
	var existing []domain.Assignment
	// пн-сб кроме среды: 5 дней по 9ч36м = 48 часов
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		if monday.AddDate(0, 0, i).Equal(tourDay) {
			continue
		}
		existing = append(existing, assignment(int64(200+i), monday.AddDate(0, 0, i), "08:00", 9*60+36))
	}

	ok := EvaluateDriver(activeDriver(), existing, NewRequest(tourDay, "08:00", 10*60, 2), Caps{MaxDailyMinutes: 600, MaxWeeklyMinutes: 58 * 60})
	assert.True(t, ok.Available, "reasons: %+v", ok.Reasons)
	assert.Equal(t, 48*60, ok.MinutesThisWeek)

	tight := EvaluateDriver(activeDriver(), existing, NewRequest(tourDay, "08:00", 10*60, 2), Caps{MaxDailyMinutes: 600, MaxWeeklyMinutes: 57 * 60})
	assert.False(t, tight.Available)
	_, found := HasReason(tight.Reasons, ReasonHoursWeekCap)
	assert.True(t, found)
}

func TestAssignmentsInOtherWeeksDoNotCount(t *testing.T) {
	previousSunday := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	existing := []domain.Assignment{assignment(1, previousSunday, "08:00", 600)}

	assert.Equal(t, 0, MinutesInWeek(tourDay, existing, 0))
}

func TestScheduleConflictIsHalfOpen(t *testing.T) {
	existing := []domain.Assignment{assignment(7, tourDay, "10:00", 6*60)}

	adjacent := EvaluateDriver(activeDriver(), existing, NewRequest(tourDay, "16:00", 120, 2), Caps{MaxDailyMinutes: 24 * 60, MaxWeeklyMinutes: 100 * 60})
	assert.True(t, adjacent.Available, "reasons: %+v", adjacent.Reasons)

	existing[0].DurationMinutes = 6*60 + 1
	overlapping := EvaluateDriver(activeDriver(), existing, NewRequest(tourDay, "16:00", 120, 2), Caps{MaxDailyMinutes: 24 * 60, MaxWeeklyMinutes: 100 * 60})
	assert.False(t, overlapping.Available)

	r, found := HasReason(overlapping.Reasons, ReasonScheduleConflict)
	require.True(t, found)
	assert.Equal(t, int64(7), r.BookingID)
}

func TestExcludedBookingIsIgnored(t *testing.T) {
	existing := []domain.Assignment{assignment(7, tourDay, "10:00", 9*60)}
	req := NewRequest(tourDay, "10:00", 9*60, 2)
	req.ExcludeBookingID = 7

	c := EvaluateDriver(activeDriver(), existing, req, DefaultCaps())
	assert.True(t, c.Available)
	assert.Equal(t, 0, c.MinutesToday)
}

func TestMultiDayAssignmentBlocksEveryDay(t *testing.T) {
	a := assignment(9, tourDay, "09:00", 480)
	a.EndDate = tourDay.AddDate(0, 0, 2)

	nextDay := tourDay.AddDate(0, 0, 1)
	c := EvaluateVehicle(domain.Vehicle{ID: 1, Capacity: 10, IsActive: true}, []domain.Assignment{a}, NewRequest(nextDay, "12:00", 60, 4))
	assert.False(t, c.Available)

	after := tourDay.AddDate(0, 0, 3)
	c = EvaluateVehicle(domain.Vehicle{ID: 1, Capacity: 10, IsActive: true}, []domain.Assignment{a}, NewRequest(after, "12:00", 60, 4))
	assert.True(t, c.Available)
}

func TestVehicleCapacity(t *testing.T) {
	van := domain.Vehicle{ID: 3, Name: "Sprinter", Capacity: 8, IsActive: true}

	c := EvaluateVehicle(van, nil, NewRequest(tourDay, "10:00", 360, 11))
	assert.False(t, c.Available)
	r, found := HasReason(c.Reasons, ReasonCapacity)
	require.True(t, found)
	assert.Equal(t, 3, r.Deficit)

	c = EvaluateVehicle(van, nil, NewRequest(tourDay, "10:00", 360, 8))
	assert.True(t, c.Available)
}

func TestInactiveResourcesAreAnnotated(t *testing.T) {
	c := EvaluateVehicle(domain.Vehicle{ID: 1, Capacity: 10}, nil, NewRequest(tourDay, "10:00", 60, 2))
	assert.False(t, c.Available)
	_, found := HasReason(c.Reasons, ReasonInactive)
	assert.True(t, found)
}

func TestMinutesToHours(t *testing.T) {
	assert.Equal(t, "7.5", MinutesToHours(450).String())
	assert.Equal(t, "10", MinutesToHours(600).String())
	assert.Equal(t, "0.33", MinutesToHours(20).String())
}
