package proposals

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TourService/internal/domain"
	proposalRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/proposal"
	"github.com/m04kA/SMC-TourService/internal/itinerary"
	"github.com/m04kA/SMC-TourService/internal/pricing"
	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
	"github.com/m04kA/SMC-TourService/pkg/txmanager"
)

// Service жизненный цикл предложения: отправка, просмотр, принятие, истечение
type Service struct {
	proposalRepo ProposalRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса предложений
func NewService(
	proposalRepo ProposalRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		proposalRepo: proposalRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Get получает предложение с маршрутом
func (s *Service) Get(ctx context.Context, id int64) (*models.ProposalResponse, error) {
	p, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, proposalRepo.ErrProposalNotFound) {
			s.logger.Warn("Get: proposal id=%d not found", id)
			return nil, ErrProposalNotFound
		}
		s.logger.Error("Get: repository error for proposal id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Get - repository error: %w", ErrInternal, err)
	}
	if err := checkStopOrder("Get", p); err != nil {
		s.logger.Error("Get: proposal id=%d: %v", id, err)
		return nil, err
	}
	return models.FromDomainProposal(p), nil
}

// Send переводит черновик в sent. Просроченное предложение отправить нельзя.
func (s *Service) Send(ctx context.Context, id int64) (*models.ProposalResponse, error) {
	return s.update(ctx, "Send", id, func(p *domain.TripProposal) (bool, error) {
		now := s.timeProvider.Now()
		if p.IsExpiredAt(now) {
			return false, &domain.InvalidStateError{
				Entity: "proposal",
				From:   string(p.Status),
				To:     string(domain.ProposalStatusSent),
				Reason: "proposal is past valid_until",
			}
		}
		if err := p.TransitionTo(domain.ProposalStatusSent); err != nil {
			return false, err
		}
		p.SentAt = &now
		return true, nil
	})
}

// MarkViewed отмечает просмотр клиентом. Повторный просмотр ничего не меняет.
func (s *Service) MarkViewed(ctx context.Context, id int64) (*models.ProposalResponse, error) {
	return s.update(ctx, "MarkViewed", id, func(p *domain.TripProposal) (bool, error) {
		if p.Status == domain.ProposalStatusViewed {
			return false, nil
		}
		if err := p.TransitionTo(domain.ProposalStatusViewed); err != nil {
			return false, err
		}
		now := s.timeProvider.Now()
		p.ViewedAt = &now
		return true, nil
	})
}

// Expire переводит открытое предложение в expired
func (s *Service) Expire(ctx context.Context, id int64) (*models.ProposalResponse, error) {
	return s.update(ctx, "Expire", id, func(p *domain.TripProposal) (bool, error) {
		return true, p.TransitionTo(domain.ProposalStatusExpired)
	})
}

// ExpireOverdue переводит в expired все открытые предложения с истёкшим сроком
func (s *Service) ExpireOverdue(ctx context.Context) (*models.ExpireOverdueResponse, error) {
	n, err := s.proposalRepo.ExpireOverdue(ctx, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("ExpireOverdue: repository error: %v", err)
		return nil, fmt.Errorf("%w: ExpireOverdue - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ExpireOverdue: %d proposals expired", n)
	return &models.ExpireOverdueResponse{Expired: n}, nil
}

// Accept принимает предложение и создаёт бронирование в статусе pending.
// Принять можно только из sent/viewed и пока не истёк valid_until;
// смена статуса и создание бронирования выполняются в одной транзакции.
func (s *Service) Accept(ctx context.Context, id int64) (*models.AcceptResponse, error) {
	s.logger.Info("Accept: proposal id=%d", id)

	var resp *models.AcceptResponse
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Блокируем предложение
		p, err := s.lock(txCtx, "Accept", id)
		if err != nil {
			return err
		}

		// 2. Срок действия и статус
		now := s.timeProvider.Now()
		if err := p.CanAcceptAt(now); err != nil {
			return err
		}

		// 3. Бронирование с суммами предложения
		booking, err := s.bookingRepo.Create(txCtx, bookingFromProposal(p))
		if err != nil {
			return fmt.Errorf("%w: Accept - create booking: %w", ErrInternal, err)
		}

		// 4. sent/viewed -> accepted
		if err := p.TransitionTo(domain.ProposalStatusAccepted); err != nil {
			return err
		}
		p.AcceptedAt = &now
		p.BookingID = &booking.ID
		if err := s.proposalRepo.UpdateLifecycle(txCtx, p); err != nil {
			return fmt.Errorf("%w: Accept - update proposal: %w", ErrInternal, err)
		}

		resp = &models.AcceptResponse{
			ProposalID:     p.ID,
			ProposalStatus: string(p.Status),
			BookingID:      booking.ID,
			BookingStatus:  string(booking.Status),
			DepositCents:   int64(booking.DepositAmount),
			BalanceCents:   int64(booking.FinalPaymentAmount),
		}
		return nil
	})
	if err != nil {
		return nil, s.logFailure("Accept", id, err)
	}

	s.logger.Info("Accept: proposal id=%d accepted, booking id=%d created", id, resp.BookingID)
	return resp, nil
}

// Recalculate пересчитывает суммы по сохранённому маршруту
func (s *Service) Recalculate(ctx context.Context, id int64) (*models.RecalculateResponse, error) {
	s.logger.Info("Recalculate: proposal id=%d", id)

	var resp *models.RecalculateResponse
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		p, err := s.lock(txCtx, "Recalculate", id)
		if err != nil {
			return err
		}
		if !p.IsEditable() {
			return &domain.InvalidStateError{
				Entity: "proposal",
				From:   string(p.Status),
				To:     string(p.Status),
				Reason: "only open proposals can be recalculated",
			}
		}

		totals, err := pricing.ComputeTotals(pricing.FromProposal(p))
		if err != nil {
			return err
		}

		p.Totals = totals.ProposalTotals()
		if err := s.proposalRepo.UpdateTotals(txCtx, p.ID, p.Totals); err != nil {
			return fmt.Errorf("%w: Recalculate - update totals: %w", ErrInternal, err)
		}

		resp = &models.RecalculateResponse{ProposalID: p.ID, Totals: models.FromDomainTotals(p)}
		for _, w := range totals.Warnings {
			resp.Warnings = append(resp.Warnings, string(w))
		}
		return nil
	})
	if err != nil {
		return nil, s.logFailure("Recalculate", id, err)
	}

	s.logger.Info("Recalculate: proposal id=%d total=%d cents", id, resp.Totals.TotalCents)
	return resp, nil
}

// update блокирует предложение и применяет изменение статуса.
// mutate возвращает false, если сохранять нечего.
func (s *Service) update(ctx context.Context, op string, id int64, mutate func(p *domain.TripProposal) (bool, error)) (*models.ProposalResponse, error) {
	s.logger.Info("%s: proposal id=%d", op, id)

	var result *domain.TripProposal
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		p, err := s.lock(txCtx, op, id)
		if err != nil {
			return err
		}

		changed, err := mutate(p)
		if err != nil {
			return err
		}
		if changed {
			if err := s.proposalRepo.UpdateLifecycle(txCtx, p); err != nil {
				return fmt.Errorf("%w: %s - update proposal: %w", ErrInternal, op, err)
			}
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, s.logFailure(op, id, err)
	}

	s.logger.Info("%s: proposal id=%d is %s", op, id, result.Status)
	return models.FromDomainProposal(result), nil
}

func (s *Service) lock(ctx context.Context, op string, id int64) (*domain.TripProposal, error) {
	p, err := s.proposalRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, proposalRepo.ErrProposalNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("%w: %s - lock proposal: %w", ErrInternal, op, err)
	}
	if err := checkStopOrder(op, p); err != nil {
		return nil, err
	}
	return p, nil
}

// checkStopOrder порядок остановок в сохранённом маршруте должен идти подряд с 1
func checkStopOrder(op string, p *domain.TripProposal) error {
	for _, day := range p.Days {
		if err := itinerary.CheckStopOrder(day); err != nil {
			return fmt.Errorf("%w: %s - stored itinerary is inconsistent: %w", ErrInternal, op, err)
		}
	}
	return nil
}

func (s *Service) logFailure(op string, id int64, err error) error {
	if txmanager.IsSerializationFailure(err) {
		err = &domain.ConflictError{
			Resource:   "proposal",
			ResourceID: id,
			Reason:     "concurrent update, reload and try again",
		}
	}

	switch {
	case errors.Is(err, ErrInternal):
		s.logger.Error("%s: proposal id=%d: %v", op, id, err)
		return err
	case errors.Is(err, ErrProposalNotFound),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrConflict):
		s.logger.Warn("%s: proposal id=%d: %v", op, id, err)
		return err
	default:
		s.logger.Error("%s: proposal id=%d: transaction failed: %v", op, id, err)
		return fmt.Errorf("%w: %s - transaction: %w", ErrInternal, op, err)
	}
}

// bookingFromProposal бронирование в статусе pending с суммами предложения.
// Место встречи берётся из первой остановки pickup, высадки из последней dropoff.
func bookingFromProposal(p *domain.TripProposal) *domain.Booking {
	proposalID := p.ID
	b := &domain.Booking{
		ProposalID:         &proposalID,
		CustomerName:       p.CustomerName,
		CustomerEmail:      p.CustomerEmail,
		CustomerPhone:      p.CustomerPhone,
		TourDate:           p.StartDate,
		EndDate:            p.EndDate,
		StartTime:          p.StartTime,
		DurationMinutes:    p.DurationMinutes,
		PartySize:          p.PartySize,
		Status:             domain.BookingStatusPending,
		Currency:           p.Currency,
		BasePrice:          p.Totals.Subtotal,
		TotalPrice:         p.Totals.Total,
		DepositAmount:      p.Totals.DepositAmount,
		FinalPaymentAmount: p.Totals.Balance,
		Notes:              p.Notes,
	}

	for _, stop := range p.AllStops() {
		place, ok := stop.Custom()
		if !ok {
			continue
		}
		location := place.Name
		if place.Address != "" {
			location = place.Name + ", " + place.Address
		}
		switch stop.Type {
		case domain.StopTypePickup:
			if b.PickupLocation == nil {
				b.PickupLocation = &location
			}
		case domain.StopTypeDropoff:
			b.DropoffLocation = &location
		}
	}
	return b
}
