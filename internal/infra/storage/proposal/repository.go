package proposal

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

const uniqueViolation = "23505"

var proposalColumns = []string{
	"id",
	"proposal_number",
	"status",
	"customer_name",
	"customer_email",
	"customer_phone",
	"party_size",
	"start_date",
	"end_date",
	"start_time",
	"duration_minutes",
	"currency",
	"deposit_percentage",
	"gratuity_percentage",
	"tax_rate",
	"discount_cents",
	"subtotal_cents",
	"taxes_cents",
	"gratuity_cents",
	"total_cents",
	"deposit_amount_cents",
	"balance_cents",
	"valid_until",
	"sent_at",
	"viewed_at",
	"accepted_at",
	"booking_id",
	"notes",
	"created_at",
	"updated_at",
}

var dayColumns = []string{"id", "day_number", "date", "title", "notes"}

var stopColumns = []string{
	"s.id",
	"s.day_id",
	"s.stop_order",
	"s.stop_type",
	"s.venue_kind",
	"s.venue_id",
	"s.custom_name",
	"s.custom_address",
	"s.scheduled_time",
	"s.duration_minutes",
	"s.per_person_cost_cents",
	"s.flat_cost_cents",
	"s.reservation_status",
	"s.notes",
}

var guestColumns = []string{"id", "name", "email", "phone", "is_primary", "dietary_notes"}

var inclusionColumns = []string{"id", "kind", "description", "quantity", "unit_price_cents"}

// Repository репозиторий предложений вместе с маршрутом, гостями и позициями
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория предложений
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет строку предложения (без дней, гостей и позиций)
func (r *Repository) Create(ctx context.Context, p *domain.TripProposal) (*domain.TripProposal, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("proposals").
		Columns(proposalColumns[1:28]...).
		Values(
			p.ProposalNumber,
			p.Status,
			p.CustomerName,
			p.CustomerEmail,
			p.CustomerPhone,
			p.PartySize,
			p.StartDate,
			p.EndDate,
			p.StartTime,
			p.DurationMinutes,
			p.Currency,
			p.DepositPercentage,
			p.GratuityPercentage,
			p.TaxRate,
			p.DiscountAmount,
			p.Totals.Subtotal,
			p.Totals.Taxes,
			p.Totals.Gratuity,
			p.Totals.Total,
			p.Totals.DepositAmount,
			p.Totals.Balance,
			p.ValidUntil,
			p.SentAt,
			p.ViewedAt,
			p.AcceptedAt,
			p.BookingID,
			p.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, &domain.ConflictError{
				Resource: "proposal",
				Reason:   fmt.Sprintf("proposal number %s already exists", p.ProposalNumber),
			}
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return p, nil
}

// CreateDay сохраняет день маршрута и возвращает его ID
func (r *Repository) CreateDay(ctx context.Context, proposalID int64, day domain.Day) (int64, error) {
	return r.insertReturningID(ctx, "CreateDay", psqlbuilder.Insert("proposal_days").
		Columns("proposal_id", "day_number", "date", "title", "notes").
		Values(proposalID, day.DayNumber, day.Date, day.Title, day.Notes))
}

// CreateStop сохраняет остановку дня. Место хранится либо как
// (venue_kind, venue_id), либо как (custom_name, custom_address).
func (r *Repository) CreateStop(ctx context.Context, dayID int64, stop domain.Stop) (int64, error) {
	var (
		venueKind     *string
		venueID       *int64
		customName    *string
		customAddress *string
	)
	switch place := stop.Place.(type) {
	case domain.VenueRef:
		kind := string(place.Kind)
		venueKind, venueID = &kind, &place.VenueID
	case domain.CustomPlace:
		customName, customAddress = &place.Name, &place.Address
	}

	return r.insertReturningID(ctx, "CreateStop", psqlbuilder.Insert("proposal_stops").
		Columns(
			"day_id",
			"stop_order",
			"stop_type",
			"venue_kind",
			"venue_id",
			"custom_name",
			"custom_address",
			"scheduled_time",
			"duration_minutes",
			"per_person_cost_cents",
			"flat_cost_cents",
			"reservation_status",
			"notes",
		).
		Values(
			dayID,
			stop.StopOrder,
			stop.Type,
			venueKind,
			venueID,
			customName,
			customAddress,
			stop.ScheduledTime,
			stop.DurationMinutes,
			stop.PerPersonCost,
			stop.FlatCost,
			stop.ReservationStatus,
			stop.Notes,
		))
}

// CreateGuest сохраняет участника группы
func (r *Repository) CreateGuest(ctx context.Context, proposalID int64, guest domain.Guest) (int64, error) {
	return r.insertReturningID(ctx, "CreateGuest", psqlbuilder.Insert("proposal_guests").
		Columns("proposal_id", "name", "email", "phone", "is_primary", "dietary_notes").
		Values(proposalID, guest.Name, guest.Email, guest.Phone, guest.IsPrimary, guest.DietaryNotes))
}

// CreateInclusion сохраняет дополнительную позицию
func (r *Repository) CreateInclusion(ctx context.Context, proposalID int64, inc domain.Inclusion) (int64, error) {
	return r.insertReturningID(ctx, "CreateInclusion", psqlbuilder.Insert("proposal_inclusions").
		Columns("proposal_id", "kind", "description", "quantity", "unit_price_cents").
		Values(proposalID, inc.Kind, inc.Description, inc.Quantity, inc.UnitPrice))
}

// GetByID загружает предложение вместе с маршрутом, гостями и позициями
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.TripProposal, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate то же, что GetByID, но блокирует строку предложения
// до конца транзакции
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.TripProposal, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id int64, forUpdate bool) (*domain.TripProposal, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(proposalColumns...).
		From("proposals").
		Where(squirrel.Eq{"id": id})

	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	p, err := scanProposal(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan proposal: %w", ErrScanRow, err)
	}

	if p.Days, err = r.loadDays(ctx, executor, id); err != nil {
		return nil, err
	}
	if p.Guests, err = r.loadGuests(ctx, executor, id); err != nil {
		return nil, err
	}
	if p.Inclusions, err = r.loadInclusions(ctx, executor, id); err != nil {
		return nil, err
	}

	return p, nil
}

// UpdateLifecycle сохраняет статус и отметки времени жизненного цикла
func (r *Repository) UpdateLifecycle(ctx context.Context, p *domain.TripProposal) error {
	return r.exec(ctx, "UpdateLifecycle", psqlbuilder.Update("proposals").
		Set("status", p.Status).
		Set("sent_at", p.SentAt).
		Set("viewed_at", p.ViewedAt).
		Set("accepted_at", p.AcceptedAt).
		Set("booking_id", p.BookingID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": p.ID}))
}

// UpdateTotals сохраняет пересчитанные суммы
func (r *Repository) UpdateTotals(ctx context.Context, id int64, totals domain.ProposalTotals) error {
	return r.exec(ctx, "UpdateTotals", psqlbuilder.Update("proposals").
		Set("subtotal_cents", totals.Subtotal).
		Set("taxes_cents", totals.Taxes).
		Set("gratuity_cents", totals.Gratuity).
		Set("total_cents", totals.Total).
		Set("deposit_amount_cents", totals.DepositAmount).
		Set("balance_cents", totals.Balance).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// UpdateDateRange сохраняет новый диапазон дат
func (r *Repository) UpdateDateRange(ctx context.Context, id int64, start, end time.Time) error {
	return r.exec(ctx, "UpdateDateRange", psqlbuilder.Update("proposals").
		Set("start_date", start).
		Set("end_date", end).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// ReplaceDays удаляет дни предложения (остановки удаляются каскадно) и
// сохраняет переданные, проставляя новые ID в days. Вызывается в транзакции.
func (r *Repository) ReplaceDays(ctx context.Context, proposalID int64, days []domain.Day) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("proposal_days").
		Where(squirrel.Eq{"proposal_id": proposalID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceDays - build delete query: %w", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceDays - execute delete: %w", ErrExecQuery, err)
	}

	for i := range days {
		day := &days[i]
		if day.ID, err = r.CreateDay(ctx, proposalID, *day); err != nil {
			return fmt.Errorf("day %d: %w", day.DayNumber, err)
		}
		for j := range day.Stops {
			stop := &day.Stops[j]
			if stop.ID, err = r.CreateStop(ctx, day.ID, *stop); err != nil {
				return fmt.Errorf("day %d stop %d: %w", day.DayNumber, stop.StopOrder, err)
			}
		}
	}
	return nil
}

// ExpireOverdue переводит в expired все открытые предложения с истёкшим
// valid_until и возвращает их количество
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("proposals").
		Set("status", domain.ProposalStatusExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": []string{
			string(domain.ProposalStatusDraft),
			string(domain.ProposalStatusSent),
			string(domain.ProposalStatusViewed),
		}}).
		Where(squirrel.Lt{"valid_until": now}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOverdue - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOverdue - execute update: %w", ErrExecQuery, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOverdue - get rows affected: %w", ErrExecQuery, err)
	}
	return n, nil
}

func (r *Repository) loadDays(ctx context.Context, executor dbmetrics.DBExecutor, proposalID int64) ([]domain.Day, error) {
	query, args, err := psqlbuilder.Select(dayColumns...).
		From("proposal_days").
		Where(squirrel.Eq{"proposal_id": proposalID}).
		OrderBy("day_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadDays - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadDays - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var days []domain.Day
	index := make(map[int64]int)
	for rows.Next() {
		var d domain.Day
		if err := rows.Scan(&d.ID, &d.DayNumber, &d.Date, &d.Title, &d.Notes); err != nil {
			return nil, fmt.Errorf("%w: loadDays - scan row: %w", ErrScanRow, err)
		}
		index[d.ID] = len(days)
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadDays - rows iteration: %w", ErrScanRow, err)
	}
	rows.Close()

	if len(days) == 0 {
		return days, nil
	}

	query, args, err = psqlbuilder.Select(stopColumns...).
		From("proposal_stops s").
		Join("proposal_days d ON d.id = s.day_id").
		Where(squirrel.Eq{"d.proposal_id": proposalID}).
		OrderBy("d.day_number ASC", "s.stop_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadDays - build stops query: %w", ErrBuildQuery, err)
	}

	stopRows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadDays - execute stops query: %w", ErrExecQuery, err)
	}
	defer stopRows.Close()

	for stopRows.Next() {
		dayID, stop, err := scanStop(stopRows)
		if err != nil {
			return nil, fmt.Errorf("%w: loadDays - scan stop: %w", ErrScanRow, err)
		}
		i, ok := index[dayID]
		if !ok {
			continue
		}
		days[i].Stops = append(days[i].Stops, stop)
	}
	if err := stopRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadDays - stop rows iteration: %w", ErrScanRow, err)
	}

	return days, nil
}

func (r *Repository) loadGuests(ctx context.Context, executor dbmetrics.DBExecutor, proposalID int64) ([]domain.Guest, error) {
	query, args, err := psqlbuilder.Select(guestColumns...).
		From("proposal_guests").
		Where(squirrel.Eq{"proposal_id": proposalID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadGuests - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadGuests - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var guests []domain.Guest
	for rows.Next() {
		var g domain.Guest
		if err := rows.Scan(&g.ID, &g.Name, &g.Email, &g.Phone, &g.IsPrimary, &g.DietaryNotes); err != nil {
			return nil, fmt.Errorf("%w: loadGuests - scan row: %w", ErrScanRow, err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadGuests - rows iteration: %w", ErrScanRow, err)
	}
	return guests, nil
}

func (r *Repository) loadInclusions(ctx context.Context, executor dbmetrics.DBExecutor, proposalID int64) ([]domain.Inclusion, error) {
	query, args, err := psqlbuilder.Select(inclusionColumns...).
		From("proposal_inclusions").
		Where(squirrel.Eq{"proposal_id": proposalID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadInclusions - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadInclusions - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var inclusions []domain.Inclusion
	for rows.Next() {
		var inc domain.Inclusion
		if err := rows.Scan(&inc.ID, &inc.Kind, &inc.Description, &inc.Quantity, &inc.UnitPrice); err != nil {
			return nil, fmt.Errorf("%w: loadInclusions - scan row: %w", ErrScanRow, err)
		}
		inclusions = append(inclusions, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadInclusions - rows iteration: %w", ErrScanRow, err)
	}
	return inclusions, nil
}

func (r *Repository) insertReturningID(ctx context.Context, op string, builder squirrel.InsertBuilder) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %s - build insert query: %w", ErrBuildQuery, op, err)
	}

	var id int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: %s - execute insert: %w", ErrExecQuery, op, err)
	}
	return id, nil
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
		return ErrProposalNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProposal(row rowScanner) (*domain.TripProposal, error) {
	var p domain.TripProposal
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.ProposalNumber,
		&p.Status,
		&p.CustomerName,
		&p.CustomerEmail,
		&p.CustomerPhone,
		&p.PartySize,
		&p.StartDate,
		&p.EndDate,
		&p.StartTime,
		&p.DurationMinutes,
		&p.Currency,
		&p.DepositPercentage,
		&p.GratuityPercentage,
		&p.TaxRate,
		&p.DiscountAmount,
		&p.Totals.Subtotal,
		&p.Totals.Taxes,
		&p.Totals.Gratuity,
		&p.Totals.Total,
		&p.Totals.DepositAmount,
		&p.Totals.Balance,
		&p.ValidUntil,
		&p.SentAt,
		&p.ViewedAt,
		&p.AcceptedAt,
		&p.BookingID,
		&p.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

func scanStop(row rowScanner) (int64, domain.Stop, error) {
	var (
		s             domain.Stop
		dayID         int64
		venueKind     sql.NullString
		venueID       sql.NullInt64
		customName    sql.NullString
		customAddress sql.NullString
	)

	err := row.Scan(
		&s.ID,
		&dayID,
		&s.StopOrder,
		&s.Type,
		&venueKind,
		&venueID,
		&customName,
		&customAddress,
		&s.ScheduledTime,
		&s.DurationMinutes,
		&s.PerPersonCost,
		&s.FlatCost,
		&s.ReservationStatus,
		&s.Notes,
	)
	if err != nil {
		return 0, s, err
	}

	switch {
	case venueKind.Valid && venueID.Valid:
		s.Place = domain.VenueRef{Kind: domain.VenueKind(venueKind.String), VenueID: venueID.Int64}
	case customName.Valid || customAddress.Valid:
		s.Place = domain.CustomPlace{Name: customName.String, Address: customAddress.String}
	}

	return dayID, s, nil
}
