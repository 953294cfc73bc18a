package change_booking_status

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/service/bookings"
	"github.com/m04kA/SMC-TourService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
)

// Action переход, который выполняет обработчик
type Action string

const (
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
)

type Handler struct {
	service BookingService
	action  Action
	logger  Logger
}

func NewHandler(service BookingService, action Action, logger Logger) *Handler {
	return &Handler{
		service: service,
		action:  action,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/start и /complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/%s - Invalid booking ID: %v", h.action, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	result, err := h.apply(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/%s - Booking not found: booking_id=%d", h.action, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /bookings/{id}/%s - Rejected: booking_id=%d, error=%v", h.action, bookingID, err)

		default:
			h.logger.Error("POST /bookings/{id}/%s - Failed: booking_id=%d, error=%v", h.action, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/%s - Booking is %s: booking_id=%d", h.action, result.Status, bookingID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) apply(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	if h.action == ActionComplete {
		return h.service.Complete(ctx, bookingID)
	}
	return h.service.Start(ctx, bookingID)
}
