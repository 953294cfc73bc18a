package update_booking_pricing

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/service/bookings"
	"github.com/m04kA/SMC-TourService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
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

// Handle PUT /api/v1/bookings/{bookingId}/pricing
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /bookings/{id}/pricing - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req models.UpdatePricingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /bookings/{id}/pricing - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Ставки приходят строками, ошибки разбора - ValidationError
	input, err := req.ToInput()
	if err != nil {
		h.logger.Warn("PUT /bookings/{id}/pricing - Invalid rates: %v", err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.service.UpdatePricing(r.Context(), bookingID, input)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PUT /bookings/{id}/pricing - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("PUT /bookings/{id}/pricing - Rejected: booking_id=%d, error=%v", bookingID, err)

		default:
			h.logger.Error("PUT /bookings/{id}/pricing - Failed to update pricing: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /bookings/{id}/pricing - Pricing updated: booking_id=%d, total=%d, balance=%d",
		bookingID, result.TotalPriceCents, result.FinalPaymentAmountCents)
	handlers.RespondJSON(w, http.StatusOK, result)
}
