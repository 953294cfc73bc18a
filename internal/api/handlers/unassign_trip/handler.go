package unassign_trip

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/api/middleware"
	assignTrip "github.com/m04kA/SMC-TourService/internal/usecase/assign_trip"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
)

// UnassignResponse HTTP response model
type UnassignResponse struct {
	BookingID     int64  `json:"bookingId"`
	BookingStatus string `json:"bookingStatus"`
}

type Handler struct {
	useCase UnassignUseCase
	logger  Logger
}

func NewHandler(useCase UnassignUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/bookings/{bookingId}/assignment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("DELETE /bookings/{id}/assignment - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	result, err := h.useCase.Unassign(r.Context(), &assignTrip.UnassignRequest{BookingID: bookingID, UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, assignTrip.ErrBookingNotFound):
			h.logger.Warn("DELETE /bookings/{id}/assignment - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("DELETE /bookings/{id}/assignment - Rejected: booking_id=%d, error=%v", bookingID, err)

		default:
			h.logger.Error("DELETE /bookings/{id}/assignment - Failed to unassign: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /bookings/{id}/assignment - Unassigned: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, &UnassignResponse{
		BookingID:     result.BookingID,
		BookingStatus: string(result.BookingStatus),
	})
}
