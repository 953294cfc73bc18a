package booking

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

var columns = []string{
	"id",
	"proposal_id",
	"customer_name",
	"customer_email",
	"customer_phone",
	"tour_date",
	"end_date",
	"start_time",
	"duration_minutes",
	"party_size",
	"pickup_location",
	"dropoff_location",
	"status",
	"currency",
	"base_price_cents",
	"total_price_cents",
	"deposit_amount_cents",
	"deposit_paid",
	"deposit_payment_ref",
	"final_payment_amount_cents",
	"final_payment_paid",
	"final_payment_ref",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"refund_amount_cents",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"proposal_id",
			"customer_name",
			"customer_email",
			"customer_phone",
			"tour_date",
			"end_date",
			"start_time",
			"duration_minutes",
			"party_size",
			"pickup_location",
			"dropoff_location",
			"status",
			"currency",
			"base_price_cents",
			"total_price_cents",
			"deposit_amount_cents",
			"deposit_paid",
			"final_payment_amount_cents",
			"final_payment_paid",
			"notes",
		).
		Values(
			booking.ProposalID,
			booking.CustomerName,
			booking.CustomerEmail,
			booking.CustomerPhone,
			booking.TourDate,
			booking.EndDate,
			booking.StartTime,
			booking.DurationMinutes,
			booking.PartySize,
			booking.PickupLocation,
			booking.DropoffLocation,
			booking.Status,
			booking.Currency,
			booking.BasePrice,
			booking.TotalPrice,
			booking.DepositAmount,
			booking.DepositPaid,
			booking.FinalPaymentAmount,
			booking.FinalPaymentPaid,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate получает бронирование и блокирует строку до конца транзакции.
// Вне транзакции ведёт себя как GetByID.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) get(ctx context.Context, id int64, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования по фильтру: пересечение дат тура с [From, To]
// и, если указаны, статусы. Сортировка по дате и времени начала.
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).From("bookings")

	// Тур пересекается с периодом, если начинается до его конца и заканчивается после начала
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"tour_date": *filter.To})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_date": *filter.From})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statuses})
	}

	query, args, err := selectBuilder.OrderBy("tour_date ASC", "start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.exec(ctx, "UpdateStatus", psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Update сохраняет изменяемые поля бронирования: статус, цены, платежи и отмену
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	return r.exec(ctx, "Update", psqlbuilder.Update("bookings").
		Set("status", booking.Status).
		Set("base_price_cents", booking.BasePrice).
		Set("total_price_cents", booking.TotalPrice).
		Set("deposit_amount_cents", booking.DepositAmount).
		Set("deposit_paid", booking.DepositPaid).
		Set("deposit_payment_ref", booking.DepositPaymentRef).
		Set("final_payment_amount_cents", booking.FinalPaymentAmount).
		Set("final_payment_paid", booking.FinalPaymentPaid).
		Set("final_payment_ref", booking.FinalPaymentRef).
		Set("cancellation_reason", booking.CancellationReason).
		Set("cancelled_at", booking.CancelledAt).
		Set("refund_amount_cents", booking.RefundAmount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}))
}

func (r *Repository) exec(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %w", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// scanBooking сканирует строку в порядке columns
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.ProposalID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.TourDate,
		&booking.EndDate,
		&booking.StartTime,
		&booking.DurationMinutes,
		&booking.PartySize,
		&booking.PickupLocation,
		&booking.DropoffLocation,
		&booking.Status,
		&booking.Currency,
		&booking.BasePrice,
		&booking.TotalPrice,
		&booking.DepositAmount,
		&booking.DepositPaid,
		&booking.DepositPaymentRef,
		&booking.FinalPaymentAmount,
		&booking.FinalPaymentPaid,
		&booking.FinalPaymentRef,
		&booking.Notes,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&booking.RefundAmount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}
