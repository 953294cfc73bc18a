package update_booking_pricing

import (
	"context"

	"github.com/m04kA/SMC-TourService/internal/pricing"
	"github.com/m04kA/SMC-TourService/internal/service/bookings/models"
)

type BookingService interface {
	UpdatePricing(ctx context.Context, bookingID int64, in pricing.Input) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
