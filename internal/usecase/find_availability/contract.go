package find_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
)

// FleetRepository интерфейс репозитория водителей и машин
type FleetRepository interface {
	ListActiveDrivers(ctx context.Context) ([]domain.Driver, error)
	ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error)
}

// AssignmentRepository интерфейс репозитория назначений
type AssignmentRepository interface {
	// ListInRange назначения, чьи даты пересекаются с [from, to]
	ListInRange(ctx context.Context, from, to time.Time) ([]domain.Assignment, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
