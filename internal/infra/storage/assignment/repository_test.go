package assignment

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/dbmetrics"
)

var tourDate = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

func TestCreateMapsUniqueViolationToConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "assignments_booking_id_key"})

	_, err = NewRepository(db).Create(context.Background(), &domain.Assignment{
		BookingID: 5, DriverID: 1, VehicleID: 2,
		TourDate: tourDate, EndDate: tourDate, StartTime: "10:00", DurationMinutes: 360,
	})

	require.ErrorIs(t, err, domain.ErrConflict)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(5), conflict.ResourceID)
}

func TestCreateOtherErrorIsExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err = NewRepository(db).Create(context.Background(), &domain.Assignment{BookingID: 5})
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestListForResourcesInRangeLocksInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from, to := tourDate.AddDate(0, 0, -2), tourDate.AddDate(0, 0, 4)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("(driver_id = $3 OR vehicle_id = $4)) ORDER BY tour_date ASC, start_time ASC FOR UPDATE")).
		WithArgs(to, from, int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), int64(77), int64(1), int64(9), tourDate, tourDate, "09:00:00", 480, nil, time.Now()))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), &dbmetrics.SqlTxWrapper{Tx: tx})

	list, err := NewRepository(db).ListForResourcesInRange(ctx, 1, 2, from, to)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(77), list[0].BookingID)
	assert.Equal(t, 480, list[0].DurationMinutes)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByBookingIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE booking_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = NewRepository(db).GetByBookingID(context.Background(), 3)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDeleteByBookingID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE booking_id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRepository(db).DeleteByBookingID(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
