package find_availability

import (
	"time"

	"github.com/m04kA/SMC-TourService/internal/scheduling"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

// Request модель запроса на поиск свободных водителей и машин
type Request struct {
	Date            time.Time        // Дата тура (без времени)
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность в минутах
	PartySize       int              // Размер группы

	// ExcludeBookingID не учитывать назначения этого бронирования (переназначение)
	ExcludeBookingID int64
}

// Response полный список кандидатов с пометкой доступности
type Response struct {
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	PartySize       int
	Drivers         []scheduling.DriverCandidate
	Vehicles        []scheduling.VehicleCandidate
}
