package find_availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/scheduling"
	"github.com/m04kA/SMC-TourService/pkg/logger"
)

type fakeFleet struct {
	drivers  []domain.Driver
	vehicles []domain.Vehicle
	err      error
}

func (f *fakeFleet) ListActiveDrivers(ctx context.Context) ([]domain.Driver, error) {
	return f.drivers, f.err
}

func (f *fakeFleet) ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return f.vehicles, f.err
}

type fakeAssignments struct {
	items    []domain.Assignment
	from, to time.Time
}

func (f *fakeAssignments) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Assignment, error) {
	f.from, f.to = from, to
	return f.items, nil
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

var tourDate = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

func newUseCase(fleet FleetRepository, assignments AssignmentRepository) *UseCase {
	uc := NewUseCase(fleet, assignments, scheduling.DefaultCaps(), logger.NewNop())
	uc.timeProvider = fixedTime{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return uc
}

func TestExecuteAnnotatesEveryCandidate(t *testing.T) {
	fleet := &fakeFleet{
		drivers: []domain.Driver{
			{ID: 1, Name: "Zed", IsActive: true},
			{ID: 2, Name: "Amy", IsActive: true},
		},
		vehicles: []domain.Vehicle{
			{ID: 10, Name: "Sedan", Capacity: 3, IsActive: true},
			{ID: 11, Name: "Limo Van", Capacity: 12, IsActive: true},
		},
	}
	assignments := &fakeAssignments{items: []domain.Assignment{
		{BookingID: 50, DriverID: 1, VehicleID: 11, TourDate: tourDate, EndDate: tourDate, StartTime: "06:00", DurationMinutes: 570},
	}}

	resp, err := newUseCase(fleet, assignments).Execute(context.Background(), &Request{
		Date:            tourDate,
		StartTime:       "18:00",
		DurationMinutes: 60,
		PartySize:       6,
	})
	require.NoError(t, err)

	require.Len(t, resp.Drivers, 2)
	assert.Equal(t, "Amy", resp.Drivers[0].Driver.Name)
	assert.True(t, resp.Drivers[0].Available)
	assert.Equal(t, "Zed", resp.Drivers[1].Driver.Name)
	assert.False(t, resp.Drivers[1].Available)
	_, capped := scheduling.HasReason(resp.Drivers[1].Reasons, scheduling.ReasonHoursTodayCap)
	assert.True(t, capped)

	require.Len(t, resp.Vehicles, 2)
	assert.Equal(t, "Limo Van", resp.Vehicles[0].Vehicle.Name)
	assert.True(t, resp.Vehicles[0].Available)
	assert.False(t, resp.Vehicles[1].Available)
	r, found := scheduling.HasReason(resp.Vehicles[1].Reasons, scheduling.ReasonCapacity)
	require.True(t, found)
	assert.Equal(t, 3, r.Deficit)

	// недельный диапазон пн-вс
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), assignments.from)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), assignments.to)
}

func TestExecuteValidation(t *testing.T) {
	uc := newUseCase(&fakeFleet{}, &fakeAssignments{})

	tests := []struct {
		name string
		req  Request
	}{
		{name: "missing date", req: Request{StartTime: "10:00", DurationMinutes: 60, PartySize: 2}},
		{name: "date in past", req: Request{Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), StartTime: "10:00", DurationMinutes: 60, PartySize: 2}},
		{name: "bad start time", req: Request{Date: tourDate, StartTime: "25:00", DurationMinutes: 60, PartySize: 2}},
		{name: "window past midnight", req: Request{Date: tourDate, StartTime: "22:00", DurationMinutes: 180, PartySize: 2}},
		{name: "zero party", req: Request{Date: tourDate, StartTime: "10:00", DurationMinutes: 60, PartySize: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), &tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestExecuteRepositoryFailure(t *testing.T) {
	uc := newUseCase(&fakeFleet{err: errors.New("connection refused")}, &fakeAssignments{})

	_, err := uc.Execute(context.Background(), &Request{Date: tourDate, StartTime: "10:00", DurationMinutes: 60, PartySize: 2})
	assert.ErrorIs(t, err, ErrInternal)
}
