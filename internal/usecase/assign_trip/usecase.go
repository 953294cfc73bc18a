package assign_trip

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
	assignmentRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/assignment"
	bookingRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/booking"
	fleetRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/fleet"
	"github.com/m04kA/SMC-TourService/internal/scheduling"
	"github.com/m04kA/SMC-TourService/pkg/txmanager"
)

// UseCase назначение водителя и машины на бронирование
type UseCase struct {
	bookingRepo    BookingRepository
	fleetRepo      FleetRepository
	assignmentRepo AssignmentRepository
	notifier       Notifier
	metrics        Metrics
	txManager      TransactionManager
	caps           scheduling.Caps
	notifyTimeout  time.Duration
	logger         Logger

	notifications sync.WaitGroup
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	fleetRepo FleetRepository,
	assignmentRepo AssignmentRepository,
	notifier Notifier,
	metrics Metrics,
	txManager TransactionManager,
	caps scheduling.Caps,
	notifyTimeout time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		fleetRepo:      fleetRepo,
		assignmentRepo: assignmentRepo,
		notifier:       notifier,
		metrics:        metrics,
		txManager:      txManager,
		caps:           caps,
		notifyTimeout:  notifyTimeout,
		logger:         logger,
	}
}

// Assign назначает водителя и машину. Доступность перепроверяется внутри
// сериализуемой транзакции по заблокированным строкам, список кандидатов,
// полученный клиентом ранее, не используется.
func (uc *UseCase) Assign(ctx context.Context, req *AssignRequest) (*AssignResponse, error) {
	uc.logger.Info("AssignTrip: booking=%d, driver=%d, vehicle=%d, user=%d",
		req.BookingID, req.DriverID, req.VehicleID, req.UserID)

	// 1. Валидация входных данных
	if err := validateAssignRequest(req); err != nil {
		uc.logger.Warn("AssignTrip: validation failed: %v", err)
		return nil, err
	}

	var result *domain.Assignment

	// 2. Проверка и запись в одной сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Блокируем бронирование
		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Assign - get booking: %w", ErrInternal, err)
		}

		if booking.Status != domain.BookingStatusConfirmed {
			return &domain.InvalidStateError{
				Entity: "booking",
				From:   string(booking.Status),
				To:     string(domain.BookingStatusAssigned),
				Reason: "only confirmed bookings can be assigned",
			}
		}

		// 2.2. У бронирования не должно быть назначения
		_, err = uc.assignmentRepo.GetByBookingID(txCtx, booking.ID)
		if err == nil {
			return &domain.ConflictError{
				Resource:   "booking",
				ResourceID: booking.ID,
				Reason:     "booking already has an assignment",
			}
		}
		if !errors.Is(err, assignmentRepo.ErrAssignmentNotFound) {
			return fmt.Errorf("%w: Assign - get assignment: %w", ErrInternal, err)
		}

		// 2.3. Водитель и машина
		driver, err := uc.fleetRepo.GetDriver(txCtx, req.DriverID)
		if err != nil {
			if errors.Is(err, fleetRepo.ErrDriverNotFound) {
				return ErrDriverNotFound
			}
			return fmt.Errorf("%w: Assign - get driver: %w", ErrInternal, err)
		}

		vehicle, err := uc.fleetRepo.GetVehicle(txCtx, req.VehicleID)
		if err != nil {
			if errors.Is(err, fleetRepo.ErrVehicleNotFound) {
				return ErrVehicleNotFound
			}
			return fmt.Errorf("%w: Assign - get vehicle: %w", ErrInternal, err)
		}

		// 2.4. Текущие назначения ресурсов (с блокировкой) и повторная проверка
		schedReq := scheduling.RequestForBooking(booking)
		from, to := scheduling.LookupRange(schedReq)

		existing, err := uc.assignmentRepo.ListForResourcesInRange(txCtx, driver.ID, vehicle.ID, from, to)
		if err != nil {
			return fmt.Errorf("%w: Assign - list assignments: %w", ErrInternal, err)
		}

		vehicleCheck := scheduling.EvaluateVehicle(*vehicle, scheduling.GroupByVehicle(existing)[vehicle.ID], schedReq)
		if !vehicleCheck.Available {
			return vehicleError(vehicle, booking, vehicleCheck.Reasons)
		}

		driverCheck := scheduling.EvaluateDriver(*driver, scheduling.GroupByDriver(existing)[driver.ID], schedReq, uc.caps)
		if !driverCheck.Available {
			return &domain.ConflictError{
				Resource:   "driver",
				ResourceID: driver.ID,
				Reason:     reasonText(driverCheck.Reasons),
			}
		}

		// 2.5. Создаём назначение
		assignment := domain.NewAssignment(booking, driver.ID, vehicle.ID, &req.UserID)
		created, err := uc.assignmentRepo.Create(txCtx, &assignment)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return err
			}
			return fmt.Errorf("%w: Assign - create assignment: %w", ErrInternal, err)
		}

		// 2.6. confirmed -> assigned
		if err := booking.TransitionTo(domain.BookingStatusAssigned); err != nil {
			return err
		}
		if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, booking.Status); err != nil {
			return fmt.Errorf("%w: Assign - update booking status: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, uc.fail("AssignTrip", req.BookingID, err)
	}

	uc.metrics.IncAssignment(resultAssigned)
	uc.logger.Info("AssignTrip: booking=%d assigned to driver=%d, vehicle=%d, assignment=%d",
		req.BookingID, req.DriverID, req.VehicleID, result.ID)

	// 3. Уведомления не блокируют и не откатывают назначение
	uc.notifyAsync(req.BookingID, domain.RecipientDriver, domain.EventTripAssigned)
	uc.notifyAsync(req.BookingID, domain.RecipientCustomer, domain.EventTripAssigned)

	return &AssignResponse{
		Assignment:    result,
		BookingStatus: domain.BookingStatusAssigned,
	}, nil
}

// Unassign снимает назначение и возвращает бронирование в confirmed.
// Удаление и смена статуса выполняются в одной транзакции.
func (uc *UseCase) Unassign(ctx context.Context, req *UnassignRequest) (*UnassignResponse, error) {
	uc.logger.Info("UnassignTrip: booking=%d, user=%d", req.BookingID, req.UserID)

	if err := validateUnassignRequest(req); err != nil {
		uc.logger.Warn("UnassignTrip: validation failed: %v", err)
		return nil, err
	}

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Unassign - get booking: %w", ErrInternal, err)
		}

		if booking.Status != domain.BookingStatusAssigned {
			return &domain.InvalidStateError{
				Entity: "booking",
				From:   string(booking.Status),
				To:     string(domain.BookingStatusConfirmed),
				Reason: "only assigned bookings can be unassigned",
			}
		}
		if err := booking.TransitionTo(domain.BookingStatusConfirmed); err != nil {
			return err
		}

		if err := uc.assignmentRepo.DeleteByBookingID(txCtx, booking.ID); err != nil {
			if errors.Is(err, assignmentRepo.ErrAssignmentNotFound) {
				return &domain.InvalidStateError{
					Entity: "booking",
					From:   string(domain.BookingStatusAssigned),
					To:     string(domain.BookingStatusConfirmed),
					Reason: "booking has no assignment",
				}
			}
			return fmt.Errorf("%w: Unassign - delete assignment: %w", ErrInternal, err)
		}

		if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, booking.Status); err != nil {
			return fmt.Errorf("%w: Unassign - update booking status: %w", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		return nil, uc.fail("UnassignTrip", req.BookingID, err)
	}

	uc.metrics.IncAssignment(resultUnassigned)
	uc.logger.Info("UnassignTrip: booking=%d returned to confirmed", req.BookingID)

	uc.notifyAsync(req.BookingID, domain.RecipientDriver, domain.EventTripUnassigned)

	return &UnassignResponse{
		BookingID:     req.BookingID,
		BookingStatus: domain.BookingStatusConfirmed,
	}, nil
}

// fail логирует ошибку, учитывает её в метриках и приводит конкурентную
// отмену транзакции к ConflictError
func (uc *UseCase) fail(op string, bookingID int64, err error) error {
	if txmanager.IsSerializationFailure(err) {
		err = &domain.ConflictError{
			Resource:   "booking",
			ResourceID: bookingID,
			Reason:     "concurrent update, reload and try again",
		}
	}

	switch {
	case errors.Is(err, domain.ErrCapacity):
		uc.metrics.IncAssignment(resultCapacity)
		uc.logger.Warn("%s: booking=%d: %v", op, bookingID, err)
		return err
	case errors.Is(err, domain.ErrConflict):
		uc.metrics.IncAssignment(resultConflict)
		uc.logger.Warn("%s: booking=%d: %v", op, bookingID, err)
		return err
	case errors.Is(err, domain.ErrInvalidState):
		uc.metrics.IncAssignment(resultState)
		uc.logger.Warn("%s: booking=%d: %v", op, bookingID, err)
		return err
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrDriverNotFound), errors.Is(err, ErrVehicleNotFound):
		uc.logger.Warn("%s: booking=%d: %v", op, bookingID, err)
		return err
	case errors.Is(err, ErrInternal):
		uc.metrics.IncAssignment(resultError)
		uc.logger.Error("%s: booking=%d: %v", op, bookingID, err)
		return err
	default:
		uc.metrics.IncAssignment(resultError)
		uc.logger.Error("%s: booking=%d: transaction failed: %v", op, bookingID, err)
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

// notifyAsync отправляет уведомление в отдельной горутине со своим таймаутом.
// Ошибка только логируется и учитывается в метриках.
func (uc *UseCase) notifyAsync(bookingID int64, recipient, event string) {
	uc.notifications.Add(1)
	go func() {
		defer uc.notifications.Done()

		ctx, cancel := context.WithTimeout(context.Background(), uc.notifyTimeout)
		defer cancel()

		if err := uc.notifier.Notify(ctx, recipient, bookingID, event); err != nil {
			uc.metrics.IncNotificationFailure(recipient)
			uc.logger.Warn("AssignTrip: notify %s about %s for booking=%d failed: %v", recipient, event, bookingID, err)
		}
	}()
}

// Wait дожидается отправки уже запущенных уведомлений (graceful shutdown)
func (uc *UseCase) Wait() {
	uc.notifications.Wait()
}

func vehicleError(vehicle *domain.Vehicle, booking *domain.Booking, reasons []scheduling.Reason) error {
	if _, ok := scheduling.HasReason(reasons, scheduling.ReasonCapacity); ok {
		return domain.NewCapacityError(vehicle.ID, vehicle.Capacity, booking.PartySize)
	}
	return &domain.ConflictError{
		Resource:   "vehicle",
		ResourceID: vehicle.ID,
		Reason:     reasonText(reasons),
	}
}

func reasonText(reasons []scheduling.Reason) string {
	if len(reasons) == 0 {
		return "unavailable"
	}
	r := reasons[0]
	if r.Message == "" {
		return string(r.Code)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}
