package proposals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/itinerary"
	"github.com/m04kA/SMC-TourService/internal/pricing"
	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
	"github.com/m04kA/SMC-TourService/pkg/money"
)

// EditItinerary меняет диапазон дат, дни и остановки открытого предложения
// и пересчитывает суммы. Дни и остановки перезаписываются целиком в одной
// транзакции вместе с датами и суммами.
func (s *Service) EditItinerary(ctx context.Context, id int64, req *models.EditItineraryRequest) (*models.EditItineraryResponse, error) {
	s.logger.Info("EditItinerary: proposal id=%d by user=%d, days=%d, stop edits=%d",
		id, req.UserID, len(req.Days), len(req.Stops))

	var resp *models.EditItineraryResponse
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Блокируем предложение
		p, err := s.lock(txCtx, "EditItinerary", id)
		if err != nil {
			return err
		}
		if !p.IsEditable() {
			return &domain.InvalidStateError{
				Entity: "proposal",
				From:   string(p.Status),
				To:     string(p.Status),
				Reason: "only open proposals can be edited",
			}
		}

		// 2. Дни по новому диапазону; title, notes и stops сохраняются по индексу
		start, end, err := editRange(p, req)
		if err != nil {
			return err
		}
		days, err := itinerary.DeriveDays(start, end, p.Days)
		if err != nil {
			return err
		}

		// 3. Правки дней и остановок
		if err := applyDayEdits(days, req.Days); err != nil {
			return err
		}
		for i, edit := range req.Stops {
			if err := applyStopEdit(days, edit); err != nil {
				return fmt.Errorf("stop edit %d: %w", i+1, err)
			}
		}
		for i := range days {
			itinerary.Renumber(&days[i])
		}
		if err := itinerary.ValidateDays(days); err != nil {
			return err
		}

		// 4. Суммы по новому маршруту
		p.StartDate, p.EndDate, p.Days = start, end, days
		totals, err := pricing.ComputeTotals(pricing.FromProposal(p))
		if err != nil {
			return err
		}
		p.Totals = totals.ProposalTotals()

		// 5. Сохраняем
		if err := s.proposalRepo.UpdateDateRange(txCtx, p.ID, start, end); err != nil {
			return fmt.Errorf("%w: EditItinerary - update date range: %w", ErrInternal, err)
		}
		if err := s.proposalRepo.ReplaceDays(txCtx, p.ID, p.Days); err != nil {
			return fmt.Errorf("%w: EditItinerary - replace days: %w", ErrInternal, err)
		}
		if err := s.proposalRepo.UpdateTotals(txCtx, p.ID, p.Totals); err != nil {
			return fmt.Errorf("%w: EditItinerary - update totals: %w", ErrInternal, err)
		}

		resp = &models.EditItineraryResponse{ProposalResponse: models.FromDomainProposal(p)}
		for _, w := range totals.Warnings {
			resp.Warnings = append(resp.Warnings, string(w))
		}
		return nil
	})
	if err != nil {
		return nil, s.logFailure("EditItinerary", id, err)
	}

	s.logger.Info("EditItinerary: proposal id=%d now %s..%s, days=%d, total=%d cents",
		id, resp.StartDate, resp.EndDate, len(resp.Days), resp.Totals.TotalCents)
	return resp, nil
}

func editRange(p *domain.TripProposal, req *models.EditItineraryRequest) (time.Time, time.Time, error) {
	start, end := p.StartDate, p.EndDate
	if req.StartDate != nil {
		d, err := time.Parse(domain.DateFormat, *req.StartDate)
		if err != nil {
			return start, end, domain.NewValidationError("start_date", "expected YYYY-MM-DD, got %q", *req.StartDate)
		}
		start = d
	}
	if req.EndDate != nil {
		d, err := time.Parse(domain.DateFormat, *req.EndDate)
		if err != nil {
			return start, end, domain.NewValidationError("end_date", "expected YYYY-MM-DD, got %q", *req.EndDate)
		}
		end = d
	}
	return domain.DateOnly(start), domain.DateOnly(end), nil
}

func applyDayEdits(days []domain.Day, edits []models.DayEdit) error {
	for _, e := range edits {
		if e.DayIndex < 0 || e.DayIndex >= len(days) {
			return domain.NewValidationError("day_index", "out of range: %d", e.DayIndex)
		}
		day := &days[e.DayIndex]
		if e.Title != nil {
			title := strings.TrimSpace(*e.Title)
			if title == "" {
				return domain.NewValidationError("title", "day %d: must not be empty", day.DayNumber)
			}
			day.Title = title
		}
		if e.Notes != nil {
			notes := *e.Notes
			day.Notes = &notes
		}
	}
	return nil
}

func applyStopEdit(days []domain.Day, e models.StopEdit) error {
	switch e.Action {
	case models.StopEditAdd:
		if _, err := itinerary.AddStop(days, e.DayIndex, domain.StopType(e.Type)); err != nil {
			return err
		}
		stops := days[e.DayIndex].Stops
		return applyStopFields(&stops[len(stops)-1], e)

	case models.StopEditRemove:
		return itinerary.RemoveStop(days, e.DayIndex, e.StopIndex)

	case models.StopEditMove:
		return itinerary.MoveStop(days, e.DayIndex, e.StopIndex, e.ToIndex)

	case models.StopEditChangeType:
		stop, err := stopAt(days, e.DayIndex, e.StopIndex)
		if err != nil {
			return err
		}
		if err := stop.ChangeType(domain.StopType(e.Type)); err != nil {
			return err
		}
		if !stop.Type.UsesVenue() {
			stop.ReservationStatus = domain.ReservationNotApplicable
		} else if stop.ReservationStatus == domain.ReservationNotApplicable {
			stop.ReservationStatus = domain.ReservationPending
		}
		return applyStopFields(stop, e)

	default:
		return domain.NewValidationError("action", "unknown stop edit action %q", e.Action)
	}
}

func stopAt(days []domain.Day, dayIndex, stopIndex int) (*domain.Stop, error) {
	if dayIndex < 0 || dayIndex >= len(days) {
		return nil, domain.NewValidationError("day_index", "out of range: %d", dayIndex)
	}
	if stopIndex < 0 || stopIndex >= len(days[dayIndex].Stops) {
		return nil, domain.NewValidationError("stop_index", "out of range: %d", stopIndex)
	}
	return &days[dayIndex].Stops[stopIndex], nil
}

// applyStopFields место, длительность и стоимость из правки; пустые поля
// оставляют значения остановки
func applyStopFields(stop *domain.Stop, e models.StopEdit) error {
	if e.VenueID != nil && e.CustomName != nil {
		return domain.NewValidationError("custom_name", "stop cannot have both venue_id and custom_name")
	}
	switch {
	case e.VenueID != nil:
		if err := stop.BindVenue(*e.VenueID); err != nil {
			return err
		}
	case e.CustomName != nil:
		address := ""
		if e.CustomAddress != nil {
			address = *e.CustomAddress
		}
		if err := stop.SetCustomPlace(*e.CustomName, address); err != nil {
			return err
		}
	}

	if e.Action == models.StopEditAdd && !stop.Type.UsesVenue() {
		stop.ReservationStatus = domain.ReservationNotApplicable
	}
	if e.DurationMinutes != nil {
		stop.DurationMinutes = *e.DurationMinutes
	}
	if e.PerPersonCostCents != nil {
		stop.PerPersonCost = money.Cents(*e.PerPersonCostCents)
	}
	if e.FlatCostCents != nil {
		stop.FlatCost = money.Cents(*e.FlatCostCents)
	}
	return nil
}
