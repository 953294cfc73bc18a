package assign_trip

import "github.com/m04kA/SMC-TourService/internal/domain"

func validateAssignRequest(req *AssignRequest) error {
	if req.BookingID <= 0 {
		return domain.NewValidationError("bookingId", "must be positive")
	}
	if req.DriverID <= 0 {
		return domain.NewValidationError("driverId", "must be positive")
	}
	if req.VehicleID <= 0 {
		return domain.NewValidationError("vehicleId", "must be positive")
	}
	return nil
}

func validateUnassignRequest(req *UnassignRequest) error {
	if req.BookingID <= 0 {
		return domain.NewValidationError("bookingId", "must be positive")
	}
	return nil
}
