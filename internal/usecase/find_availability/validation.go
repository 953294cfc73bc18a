package find_availability

import (
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.Date.IsZero() {
		return domain.NewValidationError("date", "is required")
	}

	// Дата не в прошлом
	if domain.DateOnly(req.Date).Before(domain.DateOnly(now)) {
		return domain.NewValidationError("date", "must not be in the past")
	}

	if err := req.StartTime.Validate(); err != nil {
		return domain.NewValidationError("startTime", "%v", err)
	}

	if req.DurationMinutes <= 0 {
		return domain.NewValidationError("durationMinutes", "must be positive")
	}

	// Окно должно помещаться в сутки
	if req.StartTime.Minutes()+req.DurationMinutes > 24*60 {
		return domain.NewValidationError("durationMinutes", "tour window must end before midnight")
	}

	if req.PartySize <= 0 || req.PartySize > domain.MaxPartySize {
		return domain.NewValidationError("partySize", "must be between 1 and %d", domain.MaxPartySize)
	}

	return nil
}
