package booking

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TourService/pkg/money"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func bookingRows() *sqlmock.Rows {
	tourDate := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	return sqlmock.NewRows(columns).AddRow(
		int64(42), nil, "Ann Lee", "ann@example.com", nil,
		tourDate, tourDate, "10:00:00", 360, 6,
		"Hotel Yountville", nil, "confirmed", "usd",
		int64(26000), int64(28314), int64(14157), true, "pi_123",
		int64(14157), false, nil,
		nil, nil, nil, nil,
		created, created,
	)
}

func TestGetByIDScansBooking(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, proposal_id")).
		WithArgs(int64(42)).
		WillReturnRows(bookingRows())

	b, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), b.ID)
	assert.Nil(t, b.ProposalID)
	assert.Equal(t, types.TimeString("10:00"), b.StartTime)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.Equal(t, money.Cents(28314), b.TotalPrice)
	assert.Equal(t, money.Cents(14157), b.BalanceDue())
	require.NotNil(t, b.DepositPaymentRef)
	assert.Equal(t, "pi_123", *b.DepositPaymentRef)
	require.NotNil(t, b.PickupLocation)
	assert.Nil(t, b.RefundAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetByIDForUpdateLocksInsideTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(42)).
		WillReturnRows(bookingRows())
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), &dbmetrics.SqlTxWrapper{Tx: tx})

	_, err = repo.GetByIDForUpdate(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs("assigned", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 9, domain.BookingStatusAssigned)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReturnsID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(100), now, now))

	b, err := repo.Create(context.Background(), &domain.Booking{
		CustomerName: "Ann",
		TourDate:     time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC),
		StartTime:    "10:00",
		PartySize:    4,
		Status:       domain.BookingStatusPending,
		Currency:     "usd",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFiltersByRangeAndStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)

	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE tour_date <= $1 AND end_date >= $2 AND status IN ($3,$4) ORDER BY tour_date ASC, start_time ASC")).
		WithArgs(to, from, "confirmed", "assigned").
		WillReturnRows(bookingRows())

	bookings, err := repo.List(context.Background(), domain.BookingsFilter{
		From:     &from,
		To:       &to,
		Statuses: []domain.BookingStatus{domain.BookingStatusConfirmed, domain.BookingStatusAssigned},
	})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
