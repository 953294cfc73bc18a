package scheduling

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

// ReasonCode причина, по которой ресурс недоступен
type ReasonCode string

const (
	ReasonHoursTodayCap    ReasonCode = "hours_today_cap"
	ReasonHoursWeekCap     ReasonCode = "hours_week_cap"
	ReasonScheduleConflict ReasonCode = "schedule_conflict"
	ReasonCapacity         ReasonCode = "capacity"
	ReasonInactive         ReasonCode = "inactive"
)

// Reason причина недоступности с деталями
type Reason struct {
	Code      ReasonCode
	Date      time.Time
	BookingID int64 // пересекающееся бронирование для schedule_conflict
	Deficit   int   // нехватка мест для capacity
	Message   string
}

// Caps лимиты рабочего времени водителя, включительно
type Caps struct {
	MaxDailyMinutes  int
	MaxWeeklyMinutes int
}

// DefaultCaps 10 часов в день, 60 часов в неделю
func DefaultCaps() Caps {
	return Caps{
		MaxDailyMinutes:  domain.DefaultMaxDailyDriverMinutes,
		MaxWeeklyMinutes: domain.DefaultMaxWeeklyDriverMinutes,
	}
}

// Request запрашиваемое окно: одно и то же время в каждую из дат
type Request struct {
	Dates     []time.Time
	Window    types.Window
	PartySize int

	// ExcludeBookingID назначения этого бронирования не учитываются
	ExcludeBookingID int64
}

// NewRequest запрос на одну дату
func NewRequest(date time.Time, start types.TimeString, durationMinutes, partySize int) Request {
	return Request{
		Dates:     []time.Time{domain.DateOnly(date)},
		Window:    types.NewWindow(start, durationMinutes),
		PartySize: partySize,
	}
}

// RequestForBooking запрос на все дни бронирования
func RequestForBooking(b *domain.Booking) Request {
	return Request{
		Dates:            b.Dates(),
		Window:           b.Window(),
		PartySize:        b.PartySize,
		ExcludeBookingID: b.ID,
	}
}

// DriverCandidate водитель с вычисленной доступностью
type DriverCandidate struct {
	Driver          domain.Driver
	MinutesToday    int // отработано в первую дату запроса
	MinutesThisWeek int // за неделю первой даты запроса
	Available       bool
	Reasons         []Reason
}

// VehicleCandidate машина с вычисленной доступностью
type VehicleCandidate struct {
	Vehicle   domain.Vehicle
	Available bool
	Reasons   []Reason
}

var weekConfig = &now.Config{WeekStartDay: time.Monday}

// WeekBounds неделя (пн-вс), в которую попадает дата: [start, end]
func WeekBounds(date time.Time) (time.Time, time.Time) {
	n := weekConfig.With(domain.DateOnly(date))
	return domain.DateOnly(n.BeginningOfWeek()), domain.DateOnly(n.EndOfWeek())
}

// MinutesOn сколько минут приходится на дату по назначениям
func MinutesOn(date time.Time, assignments []domain.Assignment, excludeBookingID int64) int {
	total := 0
	for _, a := range assignments {
		if a.BookingID == excludeBookingID {
			continue
		}
		if a.CoversDate(date) {
			total += a.DurationMinutes
		}
	}
	return total
}

// MinutesToHours часы для отчёта: 450 минут -> 7.5
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Round(2)
}

// MinutesInWeek сколько минут за неделю, содержащую дату
func MinutesInWeek(date time.Time, assignments []domain.Assignment, excludeBookingID int64) int {
	start, end := WeekBounds(date)
	total := 0
	for _, d := range domain.DatesInRange(start, end) {
		total += MinutesOn(d, assignments, excludeBookingID)
	}
	return total
}

// conflicts назначения, пересекающиеся с окном запроса в любую из дат
func conflicts(req Request, assignments []domain.Assignment) []Reason {
	var reasons []Reason
	seen := make(map[int64]bool)
	for _, date := range req.Dates {
		for _, a := range assignments {
			if a.BookingID == req.ExcludeBookingID || seen[a.BookingID] {
				continue
			}
			if a.CoversDate(date) && a.Window().Overlaps(req.Window) {
				seen[a.BookingID] = true
				reasons = append(reasons, Reason{
					Code:      ReasonScheduleConflict,
					Date:      domain.DateOnly(date),
					BookingID: a.BookingID,
					Message:   fmt.Sprintf("overlaps booking %d on %s", a.BookingID, date.Format(domain.DateFormat)),
				})
			}
		}
	}
	return reasons
}

// EvaluateDriver доступность водителя: нет пересечений, и с учётом запроса
// не превышены дневной и недельный лимиты. assignments назначения водителя.
func EvaluateDriver(driver domain.Driver, assignments []domain.Assignment, req Request, caps Caps) DriverCandidate {
	c := DriverCandidate{Driver: driver}
	duration := req.Window.DurationMinutes()

	if len(req.Dates) > 0 {
		c.MinutesToday = MinutesOn(req.Dates[0], assignments, req.ExcludeBookingID)
		c.MinutesThisWeek = MinutesInWeek(req.Dates[0], assignments, req.ExcludeBookingID)
	}

	if !driver.IsActive {
		c.Reasons = append(c.Reasons, Reason{Code: ReasonInactive, Message: "driver is inactive"})
	}

	c.Reasons = append(c.Reasons, conflicts(req, assignments)...)

	// Лимит в день: отработано + запрошено <= лимит
	for _, date := range req.Dates {
		worked := MinutesOn(date, assignments, req.ExcludeBookingID)
		if worked+duration > caps.MaxDailyMinutes {
			c.Reasons = append(c.Reasons, Reason{
				Code:    ReasonHoursTodayCap,
				Date:    domain.DateOnly(date),
				Message: fmt.Sprintf("%s worked + %s requested exceeds %s daily cap", hours(worked), hours(duration), hours(caps.MaxDailyMinutes)),
			})
			break
		}
	}

	// Лимит в неделю: запрошенные дни одной недели складываются
	requestedPerWeek := make(map[time.Time]int)
	for _, date := range req.Dates {
		weekStart, _ := WeekBounds(date)
		requestedPerWeek[weekStart] += duration
	}
	for _, date := range req.Dates {
		weekStart, _ := WeekBounds(date)
		requested, pending := requestedPerWeek[weekStart]
		if !pending {
			continue
		}
		delete(requestedPerWeek, weekStart)

		worked := MinutesInWeek(date, assignments, req.ExcludeBookingID)
		if worked+requested > caps.MaxWeeklyMinutes {
			c.Reasons = append(c.Reasons, Reason{
				Code:    ReasonHoursWeekCap,
				Date:    weekStart,
				Message: fmt.Sprintf("%s worked + %s requested exceeds %s weekly cap", hours(worked), hours(requested), hours(caps.MaxWeeklyMinutes)),
			})
			break
		}
	}

	c.Available = len(c.Reasons) == 0
	return c
}

// EvaluateVehicle доступность машины: хватает мест и нет пересечений.
// assignments назначения машины.
func EvaluateVehicle(vehicle domain.Vehicle, assignments []domain.Assignment, req Request) VehicleCandidate {
	c := VehicleCandidate{Vehicle: vehicle}

	if !vehicle.IsActive {
		c.Reasons = append(c.Reasons, Reason{Code: ReasonInactive, Message: "vehicle is inactive"})
	}

	if vehicle.Capacity < req.PartySize {
		deficit := req.PartySize - vehicle.Capacity
		c.Reasons = append(c.Reasons, Reason{
			Code:    ReasonCapacity,
			Deficit: deficit,
			Message: fmt.Sprintf("seats %d, party of %d", vehicle.Capacity, req.PartySize),
		})
	}

	c.Reasons = append(c.Reasons, conflicts(req, assignments)...)

	c.Available = len(c.Reasons) == 0
	return c
}

// HasReason true, если среди причин есть code
func HasReason(reasons []Reason, code ReasonCode) (Reason, bool) {
	for _, r := range reasons {
		if r.Code == code {
			return r, true
		}
	}
	return Reason{}, false
}

func hours(minutes int) string {
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}

// GroupByDriver раскладывает назначения по водителям
func GroupByDriver(assignments []domain.Assignment) map[int64][]domain.Assignment {
	out := make(map[int64][]domain.Assignment)
	for _, a := range assignments {
		out[a.DriverID] = append(out[a.DriverID], a)
	}
	return out
}

// GroupByVehicle раскладывает назначения по машинам
func GroupByVehicle(assignments []domain.Assignment) map[int64][]domain.Assignment {
	out := make(map[int64][]domain.Assignment)
	for _, a := range assignments {
		out[a.VehicleID] = append(out[a.VehicleID], a)
	}
	return out
}

// LookupRange диапазон дат, назначения в котором влияют на запрос:
// от начала недели первой даты до конца недели последней
func LookupRange(req Request) (time.Time, time.Time) {
	if len(req.Dates) == 0 {
		return time.Time{}, time.Time{}
	}
	from, _ := WeekBounds(req.Dates[0])
	_, to := WeekBounds(req.Dates[len(req.Dates)-1])
	return from, to
}
