package itinerary

import (
	"github.com/m04kA/SMC-TourService/internal/domain"
)

func checkDayIndex(days []domain.Day, dayIndex int) error {
	if dayIndex < 0 || dayIndex >= len(days) {
		return domain.NewValidationError("day_index", "out of range: %d", dayIndex)
	}
	return nil
}

func checkStopIndex(day domain.Day, stopIndex int) error {
	if stopIndex < 0 || stopIndex >= len(day.Stops) {
		return domain.NewValidationError("stop_index", "out of range: %d", stopIndex)
	}
	return nil
}

// AddStop добавляет остановку в конец дня: stop_order = count+1,
// 60 минут, нулевая стоимость, бронь pending
func AddStop(days []domain.Day, dayIndex int, stopType domain.StopType) (domain.Stop, error) {
	if err := checkDayIndex(days, dayIndex); err != nil {
		return domain.Stop{}, err
	}
	if !stopType.Valid() {
		return domain.Stop{}, domain.NewValidationError("type", "unknown stop type %q", stopType)
	}

	day := &days[dayIndex]
	if len(day.Stops) >= domain.MaxStopsPerDay {
		return domain.Stop{}, domain.NewValidationError("stops", "day %d already has %d stops", day.DayNumber, domain.MaxStopsPerDay)
	}

	stop := domain.NewStop(stopType, len(day.Stops)+1)
	day.Stops = append(day.Stops, stop)
	return stop, nil
}

// RemoveStop удаляет остановку и перенумеровывает оставшиеся подряд
func RemoveStop(days []domain.Day, dayIndex, stopIndex int) error {
	if err := checkDayIndex(days, dayIndex); err != nil {
		return err
	}
	day := &days[dayIndex]
	if err := checkStopIndex(*day, stopIndex); err != nil {
		return err
	}

	day.Stops = append(day.Stops[:stopIndex], day.Stops[stopIndex+1:]...)
	Renumber(day)
	return nil
}

// MoveStop переносит остановку на позицию to внутри дня
func MoveStop(days []domain.Day, dayIndex, from, to int) error {
	if err := checkDayIndex(days, dayIndex); err != nil {
		return err
	}
	day := &days[dayIndex]
	if err := checkStopIndex(*day, from); err != nil {
		return err
	}
	if err := checkStopIndex(*day, to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	stop := day.Stops[from]
	day.Stops = append(day.Stops[:from], day.Stops[from+1:]...)
	day.Stops = append(day.Stops[:to], append([]domain.Stop{stop}, day.Stops[to:]...)...)
	Renumber(day)
	return nil
}

// Renumber выставляет stop_order = 1..N в текущем порядке
func Renumber(day *domain.Day) {
	for i := range day.Stops {
		day.Stops[i].StopOrder = i + 1
	}
}

// CheckStopOrder проверяет, что stop_order идут подряд с 1
func CheckStopOrder(day domain.Day) error {
	for i, s := range day.Stops {
		if s.StopOrder != i+1 {
			return domain.NewValidationError("stop_order",
				"day %d: stop at position %d has order %d", day.DayNumber, i+1, s.StopOrder)
		}
	}
	return nil
}
