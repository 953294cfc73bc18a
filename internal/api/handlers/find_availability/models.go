package find_availability

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/scheduling"
	findAvailability "github.com/m04kA/SMC-TourService/internal/usecase/find_availability"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date            string             `json:"date"`
	StartTime       string             `json:"startTime"`
	DurationMinutes int                `json:"durationMinutes"`
	PartySize       int                `json:"partySize"`
	Drivers         []DriverCandidate  `json:"drivers"`
	Vehicles        []VehicleCandidate `json:"vehicles"`
}

// Reason причина недоступности
type Reason struct {
	Code      string `json:"code"`
	Date      string `json:"date,omitempty"`
	BookingID int64  `json:"bookingId,omitempty"`
	Deficit   int    `json:"deficit,omitempty"`
	Message   string `json:"message"`
}

// DriverCandidate водитель с часами и доступностью
type DriverCandidate struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	MinutesToday    int             `json:"minutesToday"`
	MinutesThisWeek int             `json:"minutesThisWeek"`
	HoursToday      decimal.Decimal `json:"hoursToday"`
	HoursThisWeek   decimal.Decimal `json:"hoursThisWeek"`
	Available       bool            `json:"available"`
	Reasons         []Reason        `json:"reasons"`
}

// VehicleCandidate машина с вместимостью и доступностью
type VehicleCandidate struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Available bool     `json:"available"`
	Reasons   []Reason `json:"reasons"`
}

// ToUseCaseRequest разбирает query параметры:
// date (YYYY-MM-DD), startTime (HH:MM), durationMinutes, partySize, excludeBookingId (опционально)
func ToUseCaseRequest(q url.Values) (*findAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, q.Get("date"))
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	startTime, err := types.NewTimeStringFromString(q.Get("startTime"))
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	duration, err := strconv.Atoi(q.Get("durationMinutes"))
	if err != nil {
		return nil, fmt.Errorf("durationMinutes: %w", err)
	}

	partySize, err := strconv.Atoi(q.Get("partySize"))
	if err != nil {
		return nil, fmt.Errorf("partySize: %w", err)
	}

	req := &findAvailability.Request{
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: duration,
		PartySize:       partySize,
	}

	if s := q.Get("excludeBookingId"); s != "" {
		if req.ExcludeBookingID, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, fmt.Errorf("excludeBookingId: %w", err)
		}
	}
	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *findAvailability.Response) *AvailabilityResponse {
	out := &AvailabilityResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		PartySize:       resp.PartySize,
		Drivers:         make([]DriverCandidate, 0, len(resp.Drivers)),
		Vehicles:        make([]VehicleCandidate, 0, len(resp.Vehicles)),
	}

	for _, d := range resp.Drivers {
		out.Drivers = append(out.Drivers, DriverCandidate{
			ID:              d.Driver.ID,
			Name:            d.Driver.Name,
			MinutesToday:    d.MinutesToday,
			MinutesThisWeek: d.MinutesThisWeek,
			HoursToday:      scheduling.MinutesToHours(d.MinutesToday),
			HoursThisWeek:   scheduling.MinutesToHours(d.MinutesThisWeek),
			Available:       d.Available,
			Reasons:         fromReasons(d.Reasons),
		})
	}
	for _, v := range resp.Vehicles {
		out.Vehicles = append(out.Vehicles, VehicleCandidate{
			ID:        v.Vehicle.ID,
			Name:      v.Vehicle.Name,
			Capacity:  v.Vehicle.Capacity,
			Available: v.Available,
			Reasons:   fromReasons(v.Reasons),
		})
	}
	return out
}

func fromReasons(reasons []scheduling.Reason) []Reason {
	out := make([]Reason, 0, len(reasons))
	for _, r := range reasons {
		item := Reason{
			Code:      string(r.Code),
			BookingID: r.BookingID,
			Deficit:   r.Deficit,
			Message:   r.Message,
		}
		if !r.Date.IsZero() {
			item.Date = r.Date.Format(domain.DateFormat)
		}
		out = append(out, item)
	}
	return out
}
