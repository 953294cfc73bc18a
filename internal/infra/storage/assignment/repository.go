package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TourService/pkg/psqlbuilder"
)

// uniqueViolation SQLSTATE нарушения уникального индекса
const uniqueViolation = "23505"

var columns = []string{
	"id",
	"booking_id",
	"driver_id",
	"vehicle_id",
	"tour_date",
	"end_date",
	"start_time",
	"duration_minutes",
	"assigned_by",
	"created_at",
}

// Repository репозиторий назначений водителей и машин
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория назначений
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет назначение. Уникальный индекс по booking_id не даёт
// назначить бронирование дважды: нарушение возвращается как domain.ConflictError.
func (r *Repository) Create(ctx context.Context, a *domain.Assignment) (*domain.Assignment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("assignments").
		Columns(
			"booking_id",
			"driver_id",
			"vehicle_id",
			"tour_date",
			"end_date",
			"start_time",
			"duration_minutes",
			"assigned_by",
		).
		Values(
			a.BookingID,
			a.DriverID,
			a.VehicleID,
			a.TourDate,
			a.EndDate,
			a.StartTime,
			a.DurationMinutes,
			a.AssignedBy,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, &domain.ConflictError{
				Resource:   "booking",
				ResourceID: a.BookingID,
				Reason:     "booking already has an assignment",
			}
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return a, nil
}

// GetByBookingID назначение бронирования
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Assignment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("assignments").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %w", ErrBuildQuery, err)
	}

	a, err := scanAssignment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan row: %w", ErrScanRow, err)
	}

	return a, nil
}

// ListInRange назначения, чьи даты пересекаются с [from, to]
func (r *Repository) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Assignment, error) {
	return r.list(ctx, "ListInRange", rangeCond(from, to), false)
}

// ListForResourcesInRange назначения водителя или машины в диапазоне дат.
// В транзакции строки блокируются (FOR UPDATE) до её завершения.
func (r *Repository) ListForResourcesInRange(ctx context.Context, driverID, vehicleID int64, from, to time.Time) ([]domain.Assignment, error) {
	cond := squirrel.And{
		rangeCond(from, to),
		squirrel.Or{
			squirrel.Eq{"driver_id": driverID},
			squirrel.Eq{"vehicle_id": vehicleID},
		},
	}
	return r.list(ctx, "ListForResourcesInRange", cond, dbmetrics.IsInTransaction(ctx))
}

// DeleteByBookingID удаляет назначение бронирования
func (r *Repository) DeleteByBookingID(ctx context.Context, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("assignments").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteByBookingID - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteByBookingID - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteByBookingID - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

func rangeCond(from, to time.Time) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.LtOrEq{"tour_date": to},
		squirrel.GtOrEq{"end_date": from},
	}
}

func (r *Repository) list(ctx context.Context, op string, cond squirrel.Sqlizer, forUpdate bool) ([]domain.Assignment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("assignments").
		Where(cond).
		OrderBy("tour_date ASC", "start_time ASC")

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	assignments := make([]domain.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		assignments = append(assignments, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return assignments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssignment(row rowScanner) (*domain.Assignment, error) {
	var a domain.Assignment
	err := row.Scan(
		&a.ID,
		&a.BookingID,
		&a.DriverID,
		&a.VehicleID,
		&a.TourDate,
		&a.EndDate,
		&a.StartTime,
		&a.DurationMinutes,
		&a.AssignedBy,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
