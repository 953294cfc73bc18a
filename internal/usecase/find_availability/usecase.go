package find_availability

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/scheduling"
)

// UseCase use case для поиска доступных водителей и машин
type UseCase struct {
	fleetRepo      FleetRepository
	assignmentRepo AssignmentRepository
	caps           scheduling.Caps
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	fleetRepo FleetRepository,
	assignmentRepo AssignmentRepository,
	caps scheduling.Caps,
	logger Logger,
) *UseCase {
	return &UseCase{
		fleetRepo:      fleetRepo,
		assignmentRepo: assignmentRepo,
		caps:           caps,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute возвращает всех активных водителей и машины с пометкой доступности
// и причинами недоступности. Ничего не отфильтровывается.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("FindAvailability: date=%s, start=%s, duration=%d, party=%d",
		req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes, req.PartySize)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("FindAvailability: validation failed: %v", err)
		return nil, err
	}

	schedReq := scheduling.NewRequest(req.Date, req.StartTime, req.DurationMinutes, req.PartySize)
	schedReq.ExcludeBookingID = req.ExcludeBookingID

	// 2. Получаем водителей и машины
	drivers, err := uc.fleetRepo.ListActiveDrivers(ctx)
	if err != nil {
		uc.logger.Error("FindAvailability: failed to list drivers: %v", err)
		return nil, fmt.Errorf("%w: failed to list drivers: %w", ErrInternal, err)
	}

	vehicles, err := uc.fleetRepo.ListActiveVehicles(ctx)
	if err != nil {
		uc.logger.Error("FindAvailability: failed to list vehicles: %v", err)
		return nil, fmt.Errorf("%w: failed to list vehicles: %w", ErrInternal, err)
	}

	// 3. Назначения за неделю, в которую попадает дата (для недельного лимита)
	from, to := scheduling.LookupRange(schedReq)
	assignments, err := uc.assignmentRepo.ListInRange(ctx, from, to)
	if err != nil {
		uc.logger.Error("FindAvailability: failed to list assignments: %v", err)
		return nil, fmt.Errorf("%w: failed to list assignments: %w", ErrInternal, err)
	}

	// 4. Вычисляем доступность каждого кандидата
	byDriver := scheduling.GroupByDriver(assignments)
	byVehicle := scheduling.GroupByVehicle(assignments)

	resp := &Response{
		Date:            domain.DateOnly(req.Date),
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		PartySize:       req.PartySize,
		Drivers:         make([]scheduling.DriverCandidate, 0, len(drivers)),
		Vehicles:        make([]scheduling.VehicleCandidate, 0, len(vehicles)),
	}

	for _, d := range drivers {
		resp.Drivers = append(resp.Drivers, scheduling.EvaluateDriver(d, byDriver[d.ID], schedReq, uc.caps))
	}
	for _, v := range vehicles {
		resp.Vehicles = append(resp.Vehicles, scheduling.EvaluateVehicle(v, byVehicle[v.ID], schedReq))
	}

	sort.SliceStable(resp.Drivers, func(i, j int) bool {
		return resp.Drivers[i].Driver.Name < resp.Drivers[j].Driver.Name
	})
	sort.SliceStable(resp.Vehicles, func(i, j int) bool {
		return resp.Vehicles[i].Vehicle.Name < resp.Vehicles[j].Vehicle.Name
	})

	uc.logger.Info("FindAvailability: %d drivers, %d vehicles evaluated for date=%s",
		len(resp.Drivers), len(resp.Vehicles), req.Date.Format(domain.DateFormat))

	return resp, nil
}
