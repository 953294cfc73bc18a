package create_proposal

import (
	"net/mail"
	"strings"

	"github.com/m04kA/SMC-TourService/internal/domain"
)

// validateRequest проверяет поля запроса, не относящиеся к маршруту
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return domain.NewValidationError("customer_name", "is required")
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return domain.NewValidationError("customer_email", "invalid email %q", req.CustomerEmail)
	}

	if req.StartDate.IsZero() {
		return domain.NewValidationError("start_date", "is required")
	}
	if req.EndDate.IsZero() {
		return domain.NewValidationError("end_date", "is required")
	}

	if req.StartTime.IsZero() {
		return domain.NewValidationError("start_time", "is required")
	}
	if err := req.StartTime.Validate(); err != nil {
		return domain.NewValidationError("start_time", "%v", err)
	}

	if req.DurationMinutes <= 0 || req.DurationMinutes > 24*60 {
		return domain.NewValidationError("duration_minutes", "must be between 1 and %d", 24*60)
	}
	if req.StartTime.Minutes()+req.DurationMinutes > 24*60 {
		return domain.NewValidationError("duration_minutes", "tour window must end before midnight")
	}
	if req.Discount.IsNegative() {
		return domain.NewValidationError("discount_amount", "must be non-negative")
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return domain.NewValidationError("notes", "must be at most %d characters", domain.MaxNotesLength)
	}

	for i, day := range req.Days {
		for _, s := range day.Stops {
			if !s.Type.Valid() {
				return domain.NewValidationError("stop_type", "day %d: unknown stop type %q", i+1, s.Type)
			}
			if s.ScheduledTime != nil {
				if err := s.ScheduledTime.Validate(); err != nil {
					return domain.NewValidationError("scheduled_time", "day %d: %v", i+1, err)
				}
			}
			if s.DurationMinutes < 0 {
				return domain.NewValidationError("duration_minutes", "day %d: stop duration must be non-negative", i+1)
			}
		}
	}

	return nil
}
