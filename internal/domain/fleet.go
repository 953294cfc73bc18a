package domain

import (
	"time"

	"github.com/m04kA/SMC-TourService/pkg/types"
)

// Driver водитель. Доступность не хранится, а вычисляется из назначений.
type Driver struct {
	ID       int64
	Name     string
	Phone    *string
	Email    *string
	IsActive bool
}

// Vehicle транспортное средство
type Vehicle struct {
	ID          int64
	Name        string
	PlateNumber string
	Capacity    int
	IsActive    bool
}

// Assignment привязка водителя и машины к бронированию.
// Окно тура денормализовано из бронирования для проверки пересечений.
type Assignment struct {
	ID              int64
	BookingID       int64
	DriverID        int64
	VehicleID       int64
	TourDate        time.Time
	EndDate         time.Time
	StartTime       types.TimeString
	DurationMinutes int
	AssignedBy      *int64
	CreatedAt       time.Time
}

// NewAssignment строит назначение из бронирования
func NewAssignment(booking *Booking, driverID, vehicleID int64, assignedBy *int64) Assignment {
	return Assignment{
		BookingID:       booking.ID,
		DriverID:        driverID,
		VehicleID:       vehicleID,
		TourDate:        DateOnly(booking.TourDate),
		EndDate:         DateOnly(booking.EndDate),
		StartTime:       booking.StartTime,
		DurationMinutes: booking.DurationMinutes,
		AssignedBy:      assignedBy,
	}
}

// CoversDate true, если назначение приходится на указанную дату
func (a Assignment) CoversDate(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(a.TourDate)) && !d.After(DateOnly(a.EndDate))
}

// Window ежедневное окно назначения
func (a Assignment) Window() types.Window {
	return types.NewWindow(a.StartTime, a.DurationMinutes)
}
