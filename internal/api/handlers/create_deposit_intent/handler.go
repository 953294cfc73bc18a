package create_deposit_intent

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/service/bookings"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgNotFound           = "бронирование не найдено"
	msgPaymentUnavailable = "платёжный сервис недоступен, повторите позже"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/deposit-intent
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/deposit-intent - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	intent, err := h.service.CreateDepositIntent(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/deposit-intent - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrPaymentUnavailable):
			h.logger.Error("POST /bookings/{id}/deposit-intent - Payment processor unavailable: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentUnavailable)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /bookings/{id}/deposit-intent - Rejected: booking_id=%d, error=%v", bookingID, err)

		default:
			h.logger.Error("POST /bookings/{id}/deposit-intent - Failed to create intent: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/deposit-intent - Intent ready: booking_id=%d, amount=%d %s",
		bookingID, intent.AmountCents, intent.Currency)
	handlers.RespondJSON(w, http.StatusCreated, intent)
}
