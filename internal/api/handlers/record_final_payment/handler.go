package record_final_payment

import (
	"errors"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/api/middleware"
	"github.com/m04kA/SMC-TourService/internal/service/bookings"
	"github.com/m04kA/SMC-TourService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingPaymentRef  = "paymentRef обязателен"
	msgNotFound           = "бронирование не найдено"
	msgPaymentNotFound    = "платёж не найден"
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

// Handle POST /api/v1/bookings/{bookingId}/final-payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/final-payment - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req models.FinalPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/final-payment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.PaymentRef) == "" {
		h.logger.Warn("POST /bookings/{id}/final-payment - Missing payment ref: booking_id=%d", bookingID)
		handlers.RespondBadRequest(w, msgMissingPaymentRef)
		return
	}
	req.UserID, _ = middleware.GetUserID(r.Context())

	result, err := h.service.RecordFinalPayment(r.Context(), bookingID, &req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/final-payment - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrPaymentRefNotFound):
			h.logger.Warn("POST /bookings/{id}/final-payment - Payment not found: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgPaymentNotFound)

		case errors.Is(err, bookings.ErrPaymentUnavailable):
			h.logger.Error("POST /bookings/{id}/final-payment - Payment processor unavailable: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentUnavailable)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /bookings/{id}/final-payment - Rejected: booking_id=%d, error=%v", bookingID, err)

		default:
			h.logger.Error("POST /bookings/{id}/final-payment - Failed to record payment: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/final-payment - Final payment recorded: booking_id=%d, user_id=%d",
		bookingID, req.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
