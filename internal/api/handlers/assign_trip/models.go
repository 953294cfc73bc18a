package assign_trip

import (
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
	assignTrip "github.com/m04kA/SMC-TourService/internal/usecase/assign_trip"
)

// AssignRequest HTTP request model
type AssignRequest struct {
	DriverID  int64 `json:"driverId"`
	VehicleID int64 `json:"vehicleId"`
}

// AssignmentResponse HTTP response model
type AssignmentResponse struct {
	ID              int64     `json:"id"`
	BookingID       int64     `json:"bookingId"`
	DriverID        int64     `json:"driverId"`
	VehicleID       int64     `json:"vehicleId"`
	TourDate        string    `json:"tourDate"`
	EndDate         string    `json:"endDate"`
	StartTime       string    `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	AssignedBy      *int64    `json:"assignedBy,omitempty"`
	BookingStatus   string    `json:"bookingStatus"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *AssignRequest) ToUseCaseRequest(bookingID, userID int64) *assignTrip.AssignRequest {
	return &assignTrip.AssignRequest{
		BookingID: bookingID,
		DriverID:  r.DriverID,
		VehicleID: r.VehicleID,
		UserID:    userID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *assignTrip.AssignResponse) *AssignmentResponse {
	a := resp.Assignment
	return &AssignmentResponse{
		ID:              a.ID,
		BookingID:       a.BookingID,
		DriverID:        a.DriverID,
		VehicleID:       a.VehicleID,
		TourDate:        a.TourDate.Format(domain.DateFormat),
		EndDate:         a.EndDate.Format(domain.DateFormat),
		StartTime:       a.StartTime.String(),
		DurationMinutes: a.DurationMinutes,
		AssignedBy:      a.AssignedBy,
		BookingStatus:   string(resp.BookingStatus),
		CreatedAt:       a.CreatedAt,
	}
}
