package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-TourService/internal/domain"
	assignmentRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/assignment"
	bookingRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-TourService/internal/integrations/payments"
	"github.com/m04kA/SMC-TourService/internal/pricing"
	"github.com/m04kA/SMC-TourService/internal/service/bookings/models"
	"github.com/m04kA/SMC-TourService/pkg/money"
	"github.com/m04kA/SMC-TourService/pkg/txmanager"
)

// idempotencyNamespace пространство имён UUIDv5 для ключей идемпотентности платежей
var idempotencyNamespace = uuid.MustParse("6f1d8e52-3c7a-4b8e-9d55-2a0f4c1b7e90")

// Service жизненный цикл бронирования: оплата, подтверждение, старт,
// завершение и отмена с расчётом возврата
type Service struct {
	bookingRepo       BookingRepository
	assignmentRepo    AssignmentRepository
	payments          PaymentProcessor
	txManager         TransactionManager
	timeProvider      TimeProvider
	finalPaymentHours int
	logger            Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	assignmentRepo AssignmentRepository,
	payments PaymentProcessor,
	txManager TransactionManager,
	timeProvider TimeProvider,
	finalPaymentHours int,
	logger Logger,
) *Service {
	if finalPaymentHours <= 0 {
		finalPaymentHours = domain.DefaultFinalPaymentWindowHours
	}
	return &Service{
		bookingRepo:       bookingRepo,
		assignmentRepo:    assignmentRepo,
		payments:          payments,
		txManager:         txManager,
		timeProvider:      timeProvider,
		finalPaymentHours: finalPaymentHours,
		logger:            logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	booking, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(booking), nil
}

// List возвращает бронирования по фильтру дат и статусов
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, domain.NewValidationError("status", "%v", err)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("List: found %d bookings", len(bookings))
	return models.FromDomainBookings(bookings), nil
}

// CreateDepositIntent создаёт у процессора платёж на сумму депозита и
// сохраняет ссылку на него. Повторный вызов для той же суммы возвращает
// тот же платёж.
func (s *Service) CreateDepositIntent(ctx context.Context, id int64) (*models.PaymentIntentResponse, error) {
	s.logger.Info("CreateDepositIntent: booking id=%d", id)

	booking, err := s.get(ctx, "CreateDepositIntent", id)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusPending || booking.DepositPaid {
		s.logger.Warn("CreateDepositIntent: booking id=%d status=%s depositPaid=%t", id, booking.Status, booking.DepositPaid)
		return nil, &domain.InvalidStateError{
			Entity: "booking",
			From:   string(booking.Status),
			To:     string(domain.BookingStatusConfirmed),
			Reason: "deposit can only be requested for pending bookings with an unpaid deposit",
		}
	}
	if booking.DepositAmount <= 0 {
		return nil, domain.NewValidationError("deposit_amount", "deposit amount must be positive")
	}

	ref, err := s.payments.CreateIntent(ctx, payments.IntentRequest{
		BookingID:      booking.ID,
		Purpose:        payments.PurposeDeposit,
		Amount:         booking.DepositAmount,
		Currency:       booking.Currency,
		IdempotencyKey: idempotencyKey(booking, payments.PurposeDeposit, booking.DepositAmount),
	})
	if err != nil {
		s.logger.Error("CreateDepositIntent: payment processor error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: CreateDepositIntent - create deposit: %w", ErrPaymentUnavailable, err)
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		locked, err := s.lock(txCtx, "CreateDepositIntent", id)
		if err != nil {
			return err
		}
		locked.DepositPaymentRef = &ref
		if err := s.bookingRepo.Update(txCtx, locked); err != nil {
			return fmt.Errorf("%w: CreateDepositIntent - update booking: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, s.logFailure("CreateDepositIntent", id, err)
	}

	s.logger.Info("CreateDepositIntent: booking id=%d payment ref=%s amount=%s", id, ref, booking.DepositAmount)
	return &models.PaymentIntentResponse{
		BookingID:   id,
		Purpose:     string(payments.PurposeDeposit),
		PaymentRef:  ref,
		AmountCents: int64(booking.DepositAmount),
		Currency:    booking.Currency,
	}, nil
}

// CreateFinalPaymentIntent создаёт у процессора платёж на остаток. Ссылка
// сохраняется только при RecordFinalPayment, после проверки платежа.
func (s *Service) CreateFinalPaymentIntent(ctx context.Context, id int64) (*models.PaymentIntentResponse, error) {
	s.logger.Info("CreateFinalPaymentIntent: booking id=%d", id)

	booking, err := s.get(ctx, "CreateFinalPaymentIntent", id)
	if err != nil {
		return nil, err
	}
	if err := checkFinalPaymentAllowed(booking); err != nil {
		s.logger.Warn("CreateFinalPaymentIntent: booking id=%d: %v", id, err)
		return nil, err
	}
	if booking.FinalPaymentAmount <= 0 {
		return nil, domain.NewValidationError("final_payment_amount", "nothing is due for booking %d", id)
	}

	ref, err := s.payments.CreateIntent(ctx, payments.IntentRequest{
		BookingID:      booking.ID,
		Purpose:        payments.PurposeFinal,
		Amount:         booking.FinalPaymentAmount,
		Currency:       booking.Currency,
		IdempotencyKey: idempotencyKey(booking, payments.PurposeFinal, booking.FinalPaymentAmount),
	})
	if err != nil {
		s.logger.Error("CreateFinalPaymentIntent: payment processor error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: CreateFinalPaymentIntent - create intent: %w", ErrPaymentUnavailable, err)
	}

	s.logger.Info("CreateFinalPaymentIntent: booking id=%d payment ref=%s amount=%s", id, ref, booking.FinalPaymentAmount)
	return &models.PaymentIntentResponse{
		BookingID:   id,
		Purpose:     string(payments.PurposeFinal),
		PaymentRef:  ref,
		AmountCents: int64(booking.FinalPaymentAmount),
		Currency:    booking.Currency,
	}, nil
}

// Confirm переводит бронирование pending -> confirmed. Требует успешного
// платежа депозита у процессора либо явного подтверждения сотрудником.
func (s *Service) Confirm(ctx context.Context, id int64, req *models.ConfirmRequest) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: booking id=%d by user=%d, override=%t", id, req.UserID, req.StaffOverride)

	// 1. Валидация
	ref := ""
	if req.PaymentRef != nil {
		ref = *req.PaymentRef
	}
	if ref == "" && !req.StaffOverride {
		s.logger.Warn("Confirm: booking id=%d has neither payment ref nor staff override", id)
		return nil, domain.NewValidationError("payment_ref", "payment reference or staff override is required")
	}

	booking, err := s.get(ctx, "Confirm", id)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		s.logger.Warn("Confirm: booking id=%d is %s", id, booking.Status)
		return nil, &domain.InvalidStateError{
			Entity: "booking",
			From:   string(booking.Status),
			To:     string(domain.BookingStatusConfirmed),
			Reason: "only pending bookings can be confirmed",
		}
	}

	// 2. Проверка платежа у процессора (вне транзакции)
	if ref != "" {
		if err := s.checkPayment(ctx, "Confirm", booking, ref, payments.PurposeDeposit, booking.DepositAmount); err != nil {
			return nil, err
		}
	}

	// 3. Повторная проверка и запись под блокировкой
	var updated *domain.Booking
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		locked, err := s.lock(txCtx, "Confirm", id)
		if err != nil {
			return err
		}
		if err := locked.TransitionTo(domain.BookingStatusConfirmed); err != nil {
			return err
		}
		locked.DepositPaid = true
		if ref != "" {
			locked.DepositPaymentRef = &ref
		}
		if err := s.bookingRepo.Update(txCtx, locked); err != nil {
			return fmt.Errorf("%w: Confirm - update booking: %w", ErrInternal, err)
		}
		updated = locked
		return nil
	})
	if err != nil {
		return nil, s.logFailure("Confirm", id, err)
	}

	if ref == "" {
		s.logger.Info("Confirm: booking id=%d confirmed by staff override, user=%d", id, req.UserID)
	} else {
		s.logger.Info("Confirm: booking id=%d confirmed with payment ref=%s", id, ref)
	}
	return models.FromDomainBooking(updated), nil
}

// Start переводит бронирование assigned -> in_progress
func (s *Service) Start(ctx context.Context, id int64) (*models.BookingResponse, error) {
	return s.transition(ctx, "Start", id, domain.BookingStatusInProgress)
}

// Complete переводит бронирование in_progress -> completed
func (s *Service) Complete(ctx context.Context, id int64) (*models.BookingResponse, error) {
	return s.transition(ctx, "Complete", id, domain.BookingStatusCompleted)
}

// Cancel отменяет бронирование из любого нетерминального статуса.
// Возврат депозита считается по дням до тура на момент отмены.
// Назначение водителя и машины снимается в той же транзакции.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) (*models.CancellationResult, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", id, req.UserID)

	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return nil, domain.NewValidationError("reason", "must be at most %d characters", domain.MaxCancellationReasonLength)
	}

	var result *models.CancellationResult
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Блокируем бронирование
		booking, err := s.lock(txCtx, "Cancel", id)
		if err != nil {
			return err
		}
		hadAssignment := booking.Status == domain.BookingStatusAssigned ||
			booking.Status == domain.BookingStatusInProgress

		// 2. Проверка перехода
		if err := booking.TransitionTo(domain.BookingStatusCancelled); err != nil {
			return err
		}

		// 3. Освобождаем водителя и машину
		released := false
		if hadAssignment {
			err := s.assignmentRepo.DeleteByBookingID(txCtx, id)
			switch {
			case err == nil:
				released = true
			case errors.Is(err, assignmentRepo.ErrAssignmentNotFound):
				s.logger.Warn("Cancel: booking id=%d has no assignment to release", id)
			default:
				return fmt.Errorf("%w: Cancel - release assignment: %w", ErrInternal, err)
			}
		}

		// 4. Возврат по тарифной сетке на текущий момент
		now := s.timeProvider.Now()
		quote := domain.QuoteRefund(booking, now)

		booking.CancelledAt = &now
		booking.RefundAmount = &quote.Amount
		if req.Reason != "" {
			reason := req.Reason
			booking.CancellationReason = &reason
		}

		if err := s.bookingRepo.Update(txCtx, booking); err != nil {
			return fmt.Errorf("%w: Cancel - update booking: %w", ErrInternal, err)
		}

		result = &models.CancellationResult{
			BookingID:         id,
			Status:            string(booking.Status),
			DaysBeforeTour:    quote.DaysBeforeTour,
			RefundFraction:    quote.Fraction.String(),
			RefundAmountCents: int64(quote.Amount),
			AssignmentRelease: released,
		}
		return nil
	})
	if err != nil {
		return nil, s.logFailure("Cancel", id, err)
	}

	s.logger.Info("Cancel: booking id=%d cancelled, days before tour=%d, refund=%d cents",
		id, result.DaysBeforeTour, result.RefundAmountCents)
	return result, nil
}

// PaymentSchedule депозит и окно оплаты остатка. Окно открывается за
// finalPaymentHours до начала тура, списание не выполняется.
func (s *Service) PaymentSchedule(ctx context.Context, id int64) (*models.PaymentScheduleResponse, error) {
	booking, err := s.get(ctx, "PaymentSchedule", id)
	if err != nil {
		return nil, err
	}

	window := domain.ComputeFinalPaymentWindow(booking, s.timeProvider.Now(), s.finalPaymentHours)

	return &models.PaymentScheduleResponse{
		BookingID:          booking.ID,
		Currency:           booking.Currency,
		TotalPriceCents:    int64(booking.TotalPrice),
		DepositAmountCents: int64(booking.DepositAmount),
		DepositPaid:        booking.DepositPaid,
		FinalPaymentOpens:  window.OpensAt,
		FinalPaymentIsOpen: window.IsOpen,
		FinalPaymentPaid:   window.Paid,
		AmountDueCents:     int64(window.AmountDue),
	}, nil
}

// UpdatePricing пересчитывает цену бронирования. Оплаченный депозит не
// меняется, остаток всегда равен total - deposit.
func (s *Service) UpdatePricing(ctx context.Context, id int64, in pricing.Input) (*models.BookingResponse, error) {
	s.logger.Info("UpdatePricing: booking id=%d", id)

	totals, err := pricing.ComputeTotals(in)
	if err != nil {
		s.logger.Warn("UpdatePricing: invalid pricing input for booking id=%d: %v", id, err)
		return nil, err
	}
	if totals.HasWarning(pricing.WarningDiscountClamped) {
		s.logger.Warn("UpdatePricing: discount clamped to subtotal for booking id=%d", id)
	}

	var updated *domain.Booking
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.lock(txCtx, "UpdatePricing", id)
		if err != nil {
			return err
		}

		if booking.IsTerminal() {
			return &domain.InvalidStateError{
				Entity: "booking",
				From:   string(booking.Status),
				To:     string(booking.Status),
				Reason: "pricing cannot change after the booking is closed",
			}
		}
		if booking.FinalPaymentPaid {
			return &domain.InvalidStateError{
				Entity: "booking",
				From:   string(booking.Status),
				To:     string(booking.Status),
				Reason: "final payment already recorded",
			}
		}

		booking.BasePrice = totals.Subtotal
		booking.TotalPrice = totals.Total
		if !booking.DepositPaid {
			booking.DepositAmount = totals.Deposit
		}
		if booking.TotalPrice < booking.DepositAmount {
			return domain.NewValidationError("total", "total %s is below the paid deposit %s", booking.TotalPrice, booking.DepositAmount)
		}
		booking.FinalPaymentAmount = booking.TotalPrice - booking.DepositAmount

		if err := s.bookingRepo.Update(txCtx, booking); err != nil {
			return fmt.Errorf("%w: UpdatePricing - update booking: %w", ErrInternal, err)
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, s.logFailure("UpdatePricing", id, err)
	}

	s.logger.Info("UpdatePricing: booking id=%d total=%s deposit=%s balance=%s",
		id, updated.TotalPrice, updated.DepositAmount, updated.FinalPaymentAmount)
	return models.FromDomainBooking(updated), nil
}

// RecordFinalPayment отмечает остаток оплаченным после проверки платежа у процессора
func (s *Service) RecordFinalPayment(ctx context.Context, id int64, req *models.FinalPaymentRequest) (*models.BookingResponse, error) {
	s.logger.Info("RecordFinalPayment: booking id=%d by user=%d", id, req.UserID)

	if req.PaymentRef == "" {
		return nil, domain.NewValidationError("payment_ref", "payment reference is required")
	}

	booking, err := s.get(ctx, "RecordFinalPayment", id)
	if err != nil {
		return nil, err
	}
	if err := checkFinalPaymentAllowed(booking); err != nil {
		s.logger.Warn("RecordFinalPayment: booking id=%d: %v", id, err)
		return nil, err
	}

	if booking.DepositPaymentRef != nil && *booking.DepositPaymentRef == req.PaymentRef {
		s.logger.Warn("RecordFinalPayment: booking id=%d: ref=%s is the deposit payment", id, req.PaymentRef)
		return nil, domain.NewValidationError("payment_ref", "deposit payment cannot settle the final payment")
	}

	if err := s.checkPayment(ctx, "RecordFinalPayment", booking, req.PaymentRef, payments.PurposeFinal, booking.FinalPaymentAmount); err != nil {
		return nil, err
	}

	var updated *domain.Booking
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		locked, err := s.lock(txCtx, "RecordFinalPayment", id)
		if err != nil {
			return err
		}
		if err := checkFinalPaymentAllowed(locked); err != nil {
			return err
		}

		ref := req.PaymentRef
		locked.FinalPaymentPaid = true
		locked.FinalPaymentRef = &ref
		if err := s.bookingRepo.Update(txCtx, locked); err != nil {
			return fmt.Errorf("%w: RecordFinalPayment - update booking: %w", ErrInternal, err)
		}
		updated = locked
		return nil
	})
	if err != nil {
		return nil, s.logFailure("RecordFinalPayment", id, err)
	}

	s.logger.Info("RecordFinalPayment: booking id=%d final payment ref=%s", id, req.PaymentRef)
	return models.FromDomainBooking(updated), nil
}

func (s *Service) transition(ctx context.Context, op string, id int64, to domain.BookingStatus) (*models.BookingResponse, error) {
	s.logger.Info("%s: booking id=%d -> %s", op, id, to)

	var updated *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.lock(txCtx, op, id)
		if err != nil {
			return err
		}
		if err := booking.TransitionTo(to); err != nil {
			return err
		}
		if err := s.bookingRepo.UpdateStatus(txCtx, id, booking.Status); err != nil {
			return fmt.Errorf("%w: %s - update status: %w", ErrInternal, op, err)
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, s.logFailure(op, id, err)
	}

	s.logger.Info("%s: booking id=%d is now %s", op, id, to)
	return models.FromDomainBooking(updated), nil
}

// checkPayment проверяет у процессора, что платёж создан для этого бронирования
// с нужным назначением и прошёл на нужную сумму в валюте бронирования
func (s *Service) checkPayment(ctx context.Context, op string, b *domain.Booking, ref string, purpose payments.Purpose, expected money.Cents) error {
	outcome, err := s.payments.ConfirmPayment(ctx, ref)
	if err != nil {
		if errors.Is(err, payments.ErrIntentNotFound) {
			s.logger.Warn("%s: payment ref=%s not found", op, ref)
			return ErrPaymentRefNotFound
		}
		s.logger.Error("%s: payment processor error for ref=%s: %v", op, ref, err)
		return fmt.Errorf("%w: %s - confirm payment: %w", ErrPaymentUnavailable, op, err)
	}

	if !outcome.Succeeded {
		s.logger.Warn("%s: payment ref=%s status=%s", op, ref, outcome.Status)
		return &domain.InvalidStateError{
			Entity: "payment",
			From:   outcome.Status,
			To:     "succeeded",
			Reason: "payment has not succeeded",
		}
	}
	if outcome.BookingID != b.ID || outcome.Purpose != purpose {
		s.logger.Warn("%s: payment ref=%s belongs to booking=%d purpose=%q, expected booking=%d purpose=%q",
			op, ref, outcome.BookingID, outcome.Purpose, b.ID, purpose)
		return domain.NewValidationError("payment_ref", "payment %s is not a %s payment for booking %d", ref, purpose, b.ID)
	}
	if !strings.EqualFold(outcome.Currency, b.Currency) {
		s.logger.Warn("%s: payment ref=%s currency=%s, booking currency=%s", op, ref, outcome.Currency, b.Currency)
		return domain.NewValidationError("payment_ref", "payment currency %s does not match booking currency %s", outcome.Currency, b.Currency)
	}
	if outcome.Amount < expected {
		s.logger.Warn("%s: payment ref=%s received %s, expected %s", op, ref, outcome.Amount, expected)
		return domain.NewValidationError("payment_ref", "payment amount %s is below the amount due %s", outcome.Amount, expected)
	}
	return nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return booking, nil
}

func (s *Service) lock(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: %s - lock booking: %w", ErrInternal, op, err)
	}
	return booking, nil
}

// logFailure логирует ошибку транзакции с уровнем по её виду
func (s *Service) logFailure(op string, id int64, err error) error {
	if txmanager.IsSerializationFailure(err) {
		err = &domain.ConflictError{
			Resource:   "booking",
			ResourceID: id,
			Reason:     "concurrent update, reload and try again",
		}
	}

	switch {
	case errors.Is(err, ErrInternal):
		s.logger.Error("%s: booking id=%d: %v", op, id, err)
		return err
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrConflict):
		s.logger.Warn("%s: booking id=%d: %v", op, id, err)
		return err
	default:
		s.logger.Error("%s: booking id=%d: transaction failed: %v", op, id, err)
		return fmt.Errorf("%w: %s - transaction: %w", ErrInternal, op, err)
	}
}

func checkFinalPaymentAllowed(b *domain.Booking) error {
	switch {
	case b.Status == domain.BookingStatusCancelled || b.Status == domain.BookingStatusPending:
		return &domain.InvalidStateError{
			Entity: "booking",
			From:   string(b.Status),
			To:     string(b.Status),
			Reason: "final payment requires a confirmed booking",
		}
	case b.FinalPaymentPaid:
		return &domain.ConflictError{
			Resource:   "booking",
			ResourceID: b.ID,
			Reason:     "final payment already recorded",
		}
	}
	return nil
}

// idempotencyKey детерминированный ключ: повтор запроса на ту же
// сумму не создаёт второй платёж
func idempotencyKey(b *domain.Booking, purpose payments.Purpose, amount money.Cents) string {
	name := fmt.Sprintf("booking:%d:%s:%d:%s", b.ID, purpose, amount, b.Currency)
	return uuid.NewSHA1(idempotencyNamespace, []byte(name)).String()
}
