package assign_trip

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/internal/domain"
	assignmentRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/assignment"
	bookingRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/booking"
	fleetRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/fleet"
	"github.com/m04kA/SMC-TourService/internal/scheduling"
	"github.com/m04kA/SMC-TourService/pkg/logger"
)

var tourDate = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

// store общее in-memory состояние для фейковых репозиториев
type store struct {
	bookings    map[int64]domain.Booking
	drivers     map[int64]domain.Driver
	vehicles    map[int64]domain.Vehicle
	assignments []domain.Assignment
	nextID      int64

	failStatusUpdate bool
}

func newStore() *store {
	return &store{
		bookings: map[int64]domain.Booking{
			1: {ID: 1, Status: domain.BookingStatusConfirmed, TourDate: tourDate, EndDate: tourDate, StartTime: "10:00", DurationMinutes: 360, PartySize: 6},
			2: {ID: 2, Status: domain.BookingStatusConfirmed, TourDate: tourDate, EndDate: tourDate, StartTime: "12:00", DurationMinutes: 240, PartySize: 4},
		},
		drivers: map[int64]domain.Driver{
			10: {ID: 10, Name: "Dana", IsActive: true},
		},
		vehicles: map[int64]domain.Vehicle{
			20: {ID: 20, Name: "Limo Van", Capacity: 10, IsActive: true},
			21: {ID: 21, Name: "Sedan", Capacity: 3, IsActive: true},
		},
		nextID: 100,
	}
}

func (s *store) snapshot() *store {
	c := *s
	c.bookings = make(map[int64]domain.Booking, len(s.bookings))
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	c.assignments = append([]domain.Assignment(nil), s.assignments...)
	return &c
}

func (s *store) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (s *store) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	if s.failStatusUpdate {
		return errors.New("connection reset")
	}
	b := s.bookings[id]
	b.Status = status
	s.bookings[id] = b
	return nil
}

func (s *store) GetDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	d, ok := s.drivers[id]
	if !ok {
		return nil, fleetRepo.ErrDriverNotFound
	}
	return &d, nil
}

func (s *store) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return nil, fleetRepo.ErrVehicleNotFound
	}
	return &v, nil
}

func (s *store) Create(ctx context.Context, a *domain.Assignment) (*domain.Assignment, error) {
	s.nextID++
	a.ID = s.nextID
	s.assignments = append(s.assignments, *a)
	return a, nil
}

func (s *store) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Assignment, error) {
	for _, a := range s.assignments {
		if a.BookingID == bookingID {
			return &a, nil
		}
	}
	return nil, assignmentRepo.ErrAssignmentNotFound
}

func (s *store) ListForResourcesInRange(ctx context.Context, driverID, vehicleID int64, from, to time.Time) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for _, a := range s.assignments {
		if (a.DriverID == driverID || a.VehicleID == vehicleID) && !a.TourDate.After(to) && !a.EndDate.Before(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *store) DeleteByBookingID(ctx context.Context, bookingID int64) error {
	for i, a := range s.assignments {
		if a.BookingID == bookingID {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			return nil
		}
	}
	return assignmentRepo.ErrAssignmentNotFound
}

// fakeTx откатывает состояние store при ошибке
type fakeTx struct{ s *store }

func (f fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := f.s.snapshot()
	if err := fn(ctx); err != nil {
		f.s.bookings = saved.bookings
		f.s.assignments = saved.assignments
		return err
	}
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *fakeNotifier) Notify(ctx context.Context, recipientRole string, bookingID int64, eventType string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recipientRole+":"+eventType)
	return n.err
}

type fakeMetrics struct {
	mu          sync.Mutex
	results     []string
	notifyFails int
}

func (m *fakeMetrics) IncAssignment(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

func (m *fakeMetrics) IncNotificationFailure(recipient string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifyFails++
}

func newUseCase(s *store, n *fakeNotifier, m *fakeMetrics) *UseCase {
	return NewUseCase(s, s, s, n, m, fakeTx{s: s}, scheduling.DefaultCaps(), time.Second, logger.NewNop())
}

func TestAssignCreatesAssignmentAndNotifies(t *testing.T) {
	s := newStore()
	n := &fakeNotifier{}
	m := &fakeMetrics{}
	uc := newUseCase(s, n, m)

	resp, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 20, UserID: 5})
	require.NoError(t, err)
	uc.Wait()

	assert.Equal(t, domain.BookingStatusAssigned, resp.BookingStatus)
	assert.Equal(t, domain.BookingStatusAssigned, s.bookings[1].Status)
	require.Len(t, s.assignments, 1)
	assert.Equal(t, 360, s.assignments[0].DurationMinutes)
	assert.Equal(t, int64(5), *s.assignments[0].AssignedBy)
	assert.ElementsMatch(t, []string{"driver:trip_assigned", "customer:trip_assigned"}, n.calls)
	assert.Equal(t, []string{"assigned"}, m.results)
}

func TestAssignRechecksAgainstCurrentAssignments(t *testing.T) {
	s := newStore()
	uc := newUseCase(s, &fakeNotifier{}, &fakeMetrics{})

	// Кандидаты получены, когда водитель был свободен; затем другой сотрудник
	// назначил его на бронирование 2, окно которого пересекается.
	_, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 2, DriverID: 10, VehicleID: 20})
	require.NoError(t, err)

	_, err = uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 20})
	uc.Wait()

	require.ErrorIs(t, err, domain.ErrConflict)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "vehicle", conflict.Resource)
	assert.Contains(t, conflict.Reason, "schedule_conflict")

	assert.Equal(t, domain.BookingStatusConfirmed, s.bookings[1].Status)
	assert.Len(t, s.assignments, 1)
}

func TestAssignDriverConflictWithDifferentVehicle(t *testing.T) {
	s := newStore()
	s.vehicles[22] = domain.Vehicle{ID: 22, Name: "Coach", Capacity: 20, IsActive: true}
	uc := newUseCase(s, &fakeNotifier{}, &fakeMetrics{})

	_, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 2, DriverID: 10, VehicleID: 22})
	require.NoError(t, err)

	_, err = uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 20})
	uc.Wait()

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "driver", conflict.Resource)
	assert.Equal(t, int64(10), conflict.ResourceID)
}

func TestAssignCapacityError(t *testing.T) {
	s := newStore()
	m := &fakeMetrics{}
	uc := newUseCase(s, &fakeNotifier{}, m)

	_, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 21})

	require.ErrorIs(t, err, domain.ErrCapacity)
	var capErr *domain.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 3, capErr.Deficit)
	assert.Equal(t, []string{"capacity"}, m.results)
	assert.Empty(t, s.assignments)
}

func TestAssignRequiresConfirmedBooking(t *testing.T) {
	s := newStore()
	b := s.bookings[1]
	b.Status = domain.BookingStatusPending
	s.bookings[1] = b
	uc := newUseCase(s, &fakeNotifier{}, &fakeMetrics{})

	_, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 20})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestAssignUnknownResources(t *testing.T) {
	uc := newUseCase(newStore(), &fakeNotifier{}, &fakeMetrics{})

	_, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 99, DriverID: 10, VehicleID: 20})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 99, VehicleID: 20})
	assert.ErrorIs(t, err, ErrDriverNotFound)

	_, err = uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 99})
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	_, err = uc.Assign(context.Background(), &AssignRequest{BookingID: 0, DriverID: 10, VehicleID: 20})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNotificationFailureDoesNotFailAssignment(t *testing.T) {
	s := newStore()
	n := &fakeNotifier{err: errors.New("redis: connection refused")}
	m := &fakeMetrics{}
	uc := newUseCase(s, n, m)

	resp, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 20})
	require.NoError(t, err)
	uc.Wait()

	assert.Equal(t, domain.BookingStatusAssigned, resp.BookingStatus)
	assert.Equal(t, domain.BookingStatusAssigned, s.bookings[1].Status)
	assert.Len(t, s.assignments, 1)
	assert.Equal(t, 2, m.notifyFails)
}

func TestAssignRollsBackWhenStatusUpdateFails(t *testing.T) {
	s := newStore()
	s.failStatusUpdate = true
	n := &fakeNotifier{}
	uc := newUseCase(s, n, &fakeMetrics{})

	_, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 20})
	uc.Wait()

	require.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, s.assignments)
	assert.Empty(t, n.calls)
}

func TestUnassignRestoresConfirmed(t *testing.T) {
	s := newStore()
	n := &fakeNotifier{}
	uc := newUseCase(s, n, &fakeMetrics{})

	_, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 20})
	require.NoError(t, err)

	resp, err := uc.Unassign(context.Background(), &UnassignRequest{BookingID: 1})
	require.NoError(t, err)
	uc.Wait()

	assert.Equal(t, domain.BookingStatusConfirmed, resp.BookingStatus)
	assert.Equal(t, domain.BookingStatusConfirmed, s.bookings[1].Status)
	assert.Empty(t, s.assignments)
	assert.Contains(t, n.calls, "driver:trip_unassigned")
}

func TestUnassignIsAtomic(t *testing.T) {
	s := newStore()
	uc := newUseCase(s, &fakeNotifier{}, &fakeMetrics{})

	_, err := uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 20})
	require.NoError(t, err)
	uc.Wait()

	s.failStatusUpdate = true
	_, err = uc.Unassign(context.Background(), &UnassignRequest{BookingID: 1})
	require.Error(t, err)

	assert.Equal(t, domain.BookingStatusAssigned, s.bookings[1].Status)
	assert.Len(t, s.assignments, 1)
}

func TestUnassignRequiresAssignedBooking(t *testing.T) {
	s := newStore()
	b := s.bookings[1]
	b.Status = domain.BookingStatusPending
	s.bookings[1] = b
	uc := newUseCase(s, &fakeNotifier{}, &fakeMetrics{})

	_, err := uc.Unassign(context.Background(), &UnassignRequest{BookingID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, domain.BookingStatusPending, s.bookings[1].Status)
}

func TestAssignSerializationFailureOnInsertIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assignmentColumns := []string{
		"id", "booking_id", "driver_id", "vehicle_id", "tour_date",
		"end_date", "start_time", "duration_minutes", "assigned_by", "created_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE booking_id = $1")).
		WillReturnRows(sqlmock.NewRows(assignmentColumns))
	mock.ExpectQuery(regexp.QuoteMeta("(driver_id = $3 OR vehicle_id = $4)) ORDER BY tour_date ASC")).
		WillReturnRows(sqlmock.NewRows(assignmentColumns))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access due to read/write dependencies among transactions"})

	s := newStore()
	m := &fakeMetrics{}
	n := &fakeNotifier{}
	uc := NewUseCase(s, s, assignmentRepo.NewRepository(db), n, m, fakeTx{s: s},
		scheduling.DefaultCaps(), time.Second, logger.NewNop())

	_, err = uc.Assign(context.Background(), &AssignRequest{BookingID: 1, DriverID: 10, VehicleID: 20})
	uc.Wait()

	require.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Equal(t, []string{"conflict"}, m.results)
	assert.Equal(t, domain.BookingStatusConfirmed, s.bookings[1].Status)
	assert.Empty(t, n.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
