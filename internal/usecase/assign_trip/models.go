package assign_trip

import "github.com/m04kA/SMC-TourService/internal/domain"

// AssignRequest модель запроса на назначение водителя и машины
type AssignRequest struct {
	BookingID int64
	DriverID  int64
	VehicleID int64
	UserID    int64 // сотрудник, выполняющий назначение
}

// AssignResponse результат назначения
type AssignResponse struct {
	Assignment    *domain.Assignment
	BookingStatus domain.BookingStatus
}

// UnassignRequest модель запроса на снятие назначения
type UnassignRequest struct {
	BookingID int64
	UserID    int64
}

// UnassignResponse результат снятия назначения
type UnassignResponse struct {
	BookingID     int64
	BookingStatus domain.BookingStatus
}

// Результаты для метрики assignments_total
const (
	resultAssigned   = "assigned"
	resultUnassigned = "unassigned"
	resultConflict   = "conflict"
	resultCapacity   = "capacity"
	resultState      = "invalid_state"
	resultError      = "error"
)
