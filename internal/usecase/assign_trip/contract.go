package assign_trip

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// FleetRepository интерфейс репозитория водителей и машин
type FleetRepository interface {
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error)
}

// AssignmentRepository интерфейс репозитория назначений
type AssignmentRepository interface {
	Create(ctx context.Context, a *domain.Assignment) (*domain.Assignment, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Assignment, error)
	ListForResourcesInRange(ctx context.Context, driverID, vehicleID int64, from, to time.Time) ([]domain.Assignment, error)
	DeleteByBookingID(ctx context.Context, bookingID int64) error
}

// Notifier отправка уведомлений (fire-and-forget)
type Notifier interface {
	Notify(ctx context.Context, recipientRole string, bookingID int64, eventType string) error
}

// Metrics бизнес-метрики назначений
type Metrics interface {
	IncAssignment(result string)
	IncNotificationFailure(recipient string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
