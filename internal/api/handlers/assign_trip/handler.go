package assign_trip

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/api/middleware"
	assignTrip "github.com/m04kA/SMC-TourService/internal/usecase/assign_trip"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgBookingNotFound    = "бронирование не найдено"
	msgDriverNotFound     = "водитель не найден"
	msgVehicleNotFound    = "машина не найдена"
)

type Handler struct {
	useCase AssignUseCase
	logger  Logger
}

func NewHandler(useCase AssignUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/assignment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/assignment - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req AssignRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/assignment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	result, err := h.useCase.Assign(r.Context(), req.ToUseCaseRequest(bookingID, userID))
	if err != nil {
		switch {
		case errors.Is(err, assignTrip.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/assignment - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, assignTrip.ErrDriverNotFound):
			h.logger.Warn("POST /bookings/{id}/assignment - Driver not found: driver_id=%d", req.DriverID)
			handlers.RespondNotFound(w, msgDriverNotFound)

		case errors.Is(err, assignTrip.ErrVehicleNotFound):
			h.logger.Warn("POST /bookings/{id}/assignment - Vehicle not found: vehicle_id=%d", req.VehicleID)
			handlers.RespondNotFound(w, msgVehicleNotFound)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /bookings/{id}/assignment - Rejected: booking_id=%d, driver_id=%d, vehicle_id=%d, error=%v",
				bookingID, req.DriverID, req.VehicleID, err)

		default:
			h.logger.Error("POST /bookings/{id}/assignment - Failed to assign: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/assignment - Assigned: booking_id=%d, driver_id=%d, vehicle_id=%d, user_id=%d",
		bookingID, req.DriverID, req.VehicleID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
