package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TourService/pkg/psqlbuilder"
)

// Repository репозиторий водителей и машин
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetDriver получает водителя по ID
func (r *Repository) GetDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "phone", "email", "is_active").
		From("drivers").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDriver - build select query: %w", ErrBuildQuery, err)
	}

	var d domain.Driver
	err = executor.QueryRowContext(ctx, query, args...).Scan(&d.ID, &d.Name, &d.Phone, &d.Email, &d.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetDriver - scan driver: %w", ErrScanRow, err)
	}

	return &d, nil
}

// GetVehicle получает машину по ID
func (r *Repository) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "plate_number", "capacity", "is_active").
		From("vehicles").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetVehicle - build select query: %w", ErrBuildQuery, err)
	}

	var v domain.Vehicle
	err = executor.QueryRowContext(ctx, query, args...).Scan(&v.ID, &v.Name, &v.PlateNumber, &v.Capacity, &v.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetVehicle - scan vehicle: %w", ErrScanRow, err)
	}

	return &v, nil
}

// ListActiveDrivers все активные водители по имени
func (r *Repository) ListActiveDrivers(ctx context.Context) ([]domain.Driver, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "phone", "email", "is_active").
		From("drivers").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveDrivers - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveDrivers - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0)
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.Email, &d.IsActive); err != nil {
			return nil, fmt.Errorf("%w: ListActiveDrivers - scan row: %w", ErrScanRow, err)
		}
		drivers = append(drivers, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveDrivers - rows error: %w", ErrScanRow, err)
	}

	return drivers, nil
}

// ListActiveVehicles все активные машины по названию
func (r *Repository) ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "plate_number", "capacity", "is_active").
		From("vehicles").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveVehicles - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveVehicles - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0)
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.PlateNumber, &v.Capacity, &v.IsActive); err != nil {
			return nil, fmt.Errorf("%w: ListActiveVehicles - scan row: %w", ErrScanRow, err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveVehicles - rows error: %w", ErrScanRow, err)
	}

	return vehicles, nil
}
