package itinerary

import (
	"fmt"
	"math"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
)

// DayCount количество дней в диапазоне: max(1, ceil(end-start в днях)+1)
func DayCount(start, end time.Time) int {
	days := math.Ceil(domain.DateOnly(end).Sub(domain.DateOnly(start)).Hours() / 24)
	n := int(days) + 1
	if n < 1 {
		return 1
	}
	return n
}

// DefaultDayTitle заголовок нового дня
func DefaultDayTitle(dayNumber int) string {
	return fmt.Sprintf("Day %d", dayNumber)
}

// DeriveDays строит дни по диапазону дат, сохраняя title, notes и stops
// существующих дней по индексу. Пересчитываются только date и day_number.
// Дни за пределами нового диапазона отбрасываются. Исходный срез не меняется.
func DeriveDays(start, end time.Time, existing []domain.Day) ([]domain.Day, error) {
	if domain.DateOnly(end).Before(domain.DateOnly(start)) {
		return nil, domain.NewValidationError("end_date", "must not be before start_date")
	}

	count := DayCount(start, end)
	if count > domain.MaxTripDays {
		return nil, domain.NewValidationError("end_date", "trip cannot exceed %d days", domain.MaxTripDays)
	}

	first := domain.DateOnly(start)
	days := make([]domain.Day, count)
	for i := 0; i < count; i++ {
		if i < len(existing) {
			days[i] = existing[i].Clone()
		} else {
			days[i] = domain.Day{Title: DefaultDayTitle(i + 1), Stops: []domain.Stop{}}
		}
		days[i].DayNumber = i + 1
		days[i].Date = first.AddDate(0, 0, i)
	}
	return days, nil
}
