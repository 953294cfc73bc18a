package fleet

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActiveVehicles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, plate_number, capacity, is_active FROM vehicles WHERE is_active = $1 ORDER BY name ASC")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "plate_number", "capacity", "is_active"}).
			AddRow(int64(1), "Limo Van", "7ABC123", 12, true).
			AddRow(int64(2), "Sedan", "8XYZ987", 3, true))

	vehicles, err := NewRepository(db).ListActiveVehicles(context.Background())
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.Equal(t, 12, vehicles[0].Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDriverNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM drivers WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "email", "is_active"}))

	_, err = NewRepository(db).GetDriver(context.Background(), 4)
	assert.ErrorIs(t, err, ErrDriverNotFound)
}
