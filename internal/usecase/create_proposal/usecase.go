package create_proposal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/integrations/venues"
	"github.com/m04kA/SMC-TourService/internal/itinerary"
	"github.com/m04kA/SMC-TourService/internal/pricing"
	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
)

// UseCase создание предложения вместе с маршрутом, гостями и позициями
type UseCase struct {
	proposalRepo ProposalRepository
	venues       VenueDirectory
	txManager    TransactionManager
	defaults     Defaults
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	proposalRepo ProposalRepository,
	venues VenueDirectory,
	txManager TransactionManager,
	defaults Defaults,
	logger Logger,
) *UseCase {
	if defaults.Currency == "" {
		defaults.Currency = domain.DefaultCurrency
	}
	if defaults.ValidityDays <= 0 {
		defaults.ValidityDays = domain.DefaultProposalValidityDays
	}
	return &UseCase{
		proposalRepo: proposalRepo,
		venues:       venues,
		txManager:    txManager,
		defaults:     defaults,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute собирает маршрут, проверяет площадки, считает суммы и сохраняет
// предложение целиком в одной транзакции: при любой ошибке не сохраняется ничего.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateProposal: user=%d, customer=%s, %s..%s, party=%d",
		req.UserID, req.CustomerEmail, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), req.PartySize)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateProposal: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Маршрут
	it, err := buildItinerary(req)
	if err != nil {
		uc.logger.Warn("CreateProposal: invalid itinerary: %v", err)
		return nil, err
	}

	// 3. Площадки по справочнику
	if err := uc.checkVenues(ctx, it.VenueRefs()); err != nil {
		return nil, err
	}

	// 4. Суммы
	rates := uc.rates(req)
	totals, err := pricing.ComputeTotals(pricing.FromItinerary(it.Days(), it.Inclusions(), it.PartySize(), req.Discount, rates))
	if err != nil {
		uc.logger.Warn("CreateProposal: pricing failed: %v", err)
		return nil, err
	}

	// 5. Срок действия
	validUntil := now.AddDate(0, 0, uc.defaults.ValidityDays)
	if req.ValidUntil != nil {
		if !req.ValidUntil.After(now) {
			uc.logger.Warn("CreateProposal: valid_until %s is in the past", req.ValidUntil.Format(time.RFC3339))
			return nil, domain.NewValidationError("valid_until", "must be in the future")
		}
		validUntil = *req.ValidUntil
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = uc.defaults.Currency
	}

	proposal := &domain.TripProposal{
		ProposalNumber:     newProposalNumber(),
		Status:             domain.ProposalStatusDraft,
		CustomerName:       strings.TrimSpace(req.CustomerName),
		CustomerEmail:      strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:      req.CustomerPhone,
		PartySize:          it.PartySize(),
		StartDate:          it.StartDate(),
		EndDate:            it.EndDate(),
		StartTime:          req.StartTime,
		DurationMinutes:    req.DurationMinutes,
		Currency:           currency,
		DepositPercentage:  rates.DepositPct,
		GratuityPercentage: rates.GratuityPct,
		TaxRate:            rates.TaxRatePct,
		DiscountAmount:     req.Discount,
		Totals:             totals.ProposalTotals(),
		ValidUntil:         validUntil,
		Notes:              req.Notes,
		Days:               it.Days(),
		Guests:             it.Guests(),
		Inclusions:         it.Inclusions(),
	}

	// 6. Сохраняем граф целиком
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		return uc.persist(txCtx, proposal)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.logger.Warn("CreateProposal: %v", err)
			return nil, err
		}
		uc.logger.Error("CreateProposal: failed to persist proposal: %v", err)
		return nil, fmt.Errorf("%w: persist proposal: %w", ErrInternal, err)
	}

	resp := &Response{Proposal: models.FromDomainProposal(proposal)}
	for _, w := range totals.Warnings {
		resp.Warnings = append(resp.Warnings, string(w))
	}

	uc.logger.Info("CreateProposal: proposal id=%d number=%s created, days=%d, total=%s",
		proposal.ID, proposal.ProposalNumber, len(proposal.Days), proposal.Totals.Total)
	return resp, nil
}

// persist сохраняет предложение, дни, остановки, гостей и позиции,
// проставляя сгенерированные ID
func (uc *UseCase) persist(ctx context.Context, p *domain.TripProposal) error {
	created, err := uc.proposalRepo.Create(ctx, p)
	if err != nil {
		return err
	}
	p.ID = created.ID

	for i := range p.Days {
		day := &p.Days[i]
		if day.ID, err = uc.proposalRepo.CreateDay(ctx, p.ID, *day); err != nil {
			return fmt.Errorf("day %d: %w", day.DayNumber, err)
		}
		for j := range day.Stops {
			stop := &day.Stops[j]
			if stop.ID, err = uc.proposalRepo.CreateStop(ctx, day.ID, *stop); err != nil {
				return fmt.Errorf("day %d stop %d: %w", day.DayNumber, stop.StopOrder, err)
			}
		}
	}

	for i := range p.Guests {
		if p.Guests[i].ID, err = uc.proposalRepo.CreateGuest(ctx, p.ID, p.Guests[i]); err != nil {
			return fmt.Errorf("guest %d: %w", i+1, err)
		}
	}

	for i := range p.Inclusions {
		if p.Inclusions[i].ID, err = uc.proposalRepo.CreateInclusion(ctx, p.ID, p.Inclusions[i]); err != nil {
			return fmt.Errorf("inclusion %d: %w", i+1, err)
		}
	}
	return nil
}

// checkVenues проверяет, что площадки существуют и активны. Если справочник
// недоступен, проверка пропускается с предупреждением.
func (uc *UseCase) checkVenues(ctx context.Context, refs []domain.VenueRef) error {
	seen := make(map[domain.VenueRef]bool, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true

		venue, err := uc.venues.GetVenueWithGracefulDegradation(ctx, ref.Kind, ref.VenueID)
		switch {
		case err == nil:
		case errors.Is(err, venues.ErrVenueNotFound):
			uc.logger.Warn("CreateProposal: %s id=%d not found", ref.Kind, ref.VenueID)
			return domain.NewValidationError("venue_id", "%s %d not found", ref.Kind, ref.VenueID)
		case errors.Is(err, venues.ErrServiceDegraded):
			uc.logger.Warn("CreateProposal: venue directory unavailable, skipping venue checks: %v", err)
			return nil
		default:
			uc.logger.Error("CreateProposal: venue lookup failed for %s id=%d: %v", ref.Kind, ref.VenueID, err)
			return fmt.Errorf("%w: venue lookup: %w", ErrInternal, err)
		}

		if !venue.IsActive {
			uc.logger.Warn("CreateProposal: %s id=%d is inactive", ref.Kind, ref.VenueID)
			return domain.NewValidationError("venue_id", "%s %q is not active", ref.Kind, venue.Name)
		}
	}
	return nil
}

func (uc *UseCase) rates(req *Request) pricing.Rates {
	rates := pricing.Rates{
		TaxRatePct:  uc.defaults.TaxRatePct,
		GratuityPct: uc.defaults.GratuityPct,
		DepositPct:  uc.defaults.DepositPct,
	}
	if req.TaxRatePct != nil {
		rates.TaxRatePct = *req.TaxRatePct
	}
	if req.GratuityPct != nil {
		rates.GratuityPct = *req.GratuityPct
	}
	if req.DepositPct != nil {
		rates.DepositPct = *req.DepositPct
	}
	return rates
}

func buildItinerary(req *Request) (*itinerary.Itinerary, error) {
	b := itinerary.NewBuilder(req.StartDate, req.EndDate, req.PartySize)

	for i, day := range req.Days {
		b.DayDetails(i, day.Title, day.Notes)
		for _, in := range day.Stops {
			stop, err := newStop(in)
			if err != nil {
				return nil, fmt.Errorf("day %d: %w", i+1, err)
			}
			b.AddStop(i, stop)
		}
	}
	for _, g := range req.Guests {
		b.AddGuest(g)
	}
	for _, inc := range req.Inclusions {
		b.AddInclusion(inc)
	}

	return b.Build()
}

func newStop(in StopInput) (domain.Stop, error) {
	stop := domain.NewStop(in.Type, 0)

	if in.VenueID != nil && in.CustomName != nil {
		return stop, domain.NewValidationError("custom_name", "stop cannot have both venue_id and custom_name")
	}
	if in.ReservationStatus != "" && !in.ReservationStatus.Valid() {
		return stop, domain.NewValidationError("reservation_status", "unknown reservation status %q", in.ReservationStatus)
	}

	switch {
	case in.VenueID != nil:
		if err := stop.BindVenue(*in.VenueID); err != nil {
			return stop, err
		}
	case in.CustomName != nil:
		address := ""
		if in.CustomAddress != nil {
			address = *in.CustomAddress
		}
		if err := stop.SetCustomPlace(*in.CustomName, address); err != nil {
			return stop, err
		}
	}

	if in.DurationMinutes > 0 {
		stop.DurationMinutes = in.DurationMinutes
	}
	if in.ReservationStatus != "" {
		stop.ReservationStatus = in.ReservationStatus
	} else if !stop.Type.UsesVenue() {
		stop.ReservationStatus = domain.ReservationNotApplicable
	}
	stop.ScheduledTime = in.ScheduledTime
	stop.PerPersonCost = in.PerPersonCost
	stop.FlatCost = in.FlatCost
	stop.Notes = in.Notes
	return stop, nil
}

// newProposalNumber человекочитаемый номер вида TP-3F2A9C1B
func newProposalNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TP-" + id[:8]
}
