package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
)

// Itinerary неизменяемый снимок маршрута, проверенный целиком.
// Геттеры возвращают копии.
type Itinerary struct {
	startDate  time.Time
	endDate    time.Time
	partySize  int
	days       []domain.Day
	guests     []domain.Guest
	inclusions []domain.Inclusion
}

func (it *Itinerary) StartDate() time.Time { return it.startDate }
func (it *Itinerary) EndDate() time.Time   { return it.endDate }
func (it *Itinerary) PartySize() int       { return it.partySize }

func (it *Itinerary) Days() []domain.Day {
	days := make([]domain.Day, len(it.days))
	for i, d := range it.days {
		days[i] = d.Clone()
	}
	return days
}

func (it *Itinerary) Guests() []domain.Guest {
	return append([]domain.Guest(nil), it.guests...)
}

func (it *Itinerary) Inclusions() []domain.Inclusion {
	return append([]domain.Inclusion(nil), it.inclusions...)
}

// VenueRefs все ссылки на площадки (для проверки по справочнику)
func (it *Itinerary) VenueRefs() []domain.VenueRef {
	var refs []domain.VenueRef
	for _, d := range it.days {
		for _, s := range d.Stops {
			if ref, ok := s.Venue(); ok {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// Builder собирает маршрут по шагам; первая ошибка запоминается и
// возвращается из Build.
type Builder struct {
	startDate  time.Time
	endDate    time.Time
	partySize  int
	days       []domain.Day
	guests     []domain.Guest
	inclusions []domain.Inclusion
	err        error
}

// NewBuilder создаёт маршрут на диапазон дат с днями по умолчанию
func NewBuilder(start, end time.Time, partySize int) *Builder {
	b := &Builder{
		startDate: domain.DateOnly(start),
		endDate:   domain.DateOnly(end),
		partySize: partySize,
	}
	b.days, b.err = DeriveDays(start, end, nil)
	return b
}

// DayDetails задаёт заголовок и заметки дня
func (b *Builder) DayDetails(dayIndex int, title string, notes *string) *Builder {
	if b.err != nil {
		return b
	}
	if b.err = checkDayIndex(b.days, dayIndex); b.err != nil {
		return b
	}
	if t := strings.TrimSpace(title); t != "" {
		b.days[dayIndex].Title = t
	}
	b.days[dayIndex].Notes = notes
	return b
}

// AddStop добавляет остановку в день; stop_order назначается билдером
func (b *Builder) AddStop(dayIndex int, stop domain.Stop) *Builder {
	if b.err != nil {
		return b
	}
	if b.err = checkDayIndex(b.days, dayIndex); b.err != nil {
		return b
	}
	stop.StopOrder = len(b.days[dayIndex].Stops) + 1
	b.days[dayIndex].Stops = append(b.days[dayIndex].Stops, stop)
	return b
}

// AddGuest добавляет участника
func (b *Builder) AddGuest(g domain.Guest) *Builder {
	if b.err == nil {
		b.guests = append(b.guests, g)
	}
	return b
}

// AddInclusion добавляет дополнительную позицию
func (b *Builder) AddInclusion(inc domain.Inclusion) *Builder {
	if b.err == nil {
		b.inclusions = append(b.inclusions, inc)
	}
	return b
}

// Build проверяет маршрут целиком и возвращает неизменяемый снимок
func (b *Builder) Build() (*Itinerary, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	it := &Itinerary{
		startDate:  b.startDate,
		endDate:    b.endDate,
		partySize:  b.partySize,
		guests:     append([]domain.Guest(nil), b.guests...),
		inclusions: append([]domain.Inclusion(nil), b.inclusions...),
	}
	it.days = make([]domain.Day, len(b.days))
	for i, d := range b.days {
		it.days[i] = d.Clone()
	}
	return it, nil
}

func (b *Builder) validate() error {
	if b.partySize <= 0 || b.partySize > domain.MaxPartySize {
		return domain.NewValidationError("party_size", "must be between 1 and %d", domain.MaxPartySize)
	}

	if err := ValidateDays(b.days); err != nil {
		return err
	}

	primary := 0
	for _, g := range b.guests {
		if strings.TrimSpace(g.Name) == "" {
			return domain.NewValidationError("guest.name", "is required")
		}
		if g.IsPrimary {
			primary++
		}
	}
	if primary > 1 {
		return domain.NewValidationError("guest.is_primary", "at most one primary guest, got %d", primary)
	}

	for _, inc := range b.inclusions {
		if !inc.Kind.Valid() {
			return domain.NewValidationError("inclusion.kind", "unknown kind %q", inc.Kind)
		}
		if inc.Quantity <= 0 {
			return domain.NewValidationError("inclusion.quantity", "must be positive")
		}
		if inc.UnitPrice.IsNegative() {
			return domain.NewValidationError("inclusion.unit_price", "must be non-negative")
		}
	}
	return nil
}

// ValidateDays проверяет нумерацию дней, порядок остановок и каждую остановку
func ValidateDays(days []domain.Day) error {
	for i, d := range days {
		if d.DayNumber != i+1 {
			return domain.NewValidationError("day_number", "days must be numbered 1..N, got %d at %d", d.DayNumber, i+1)
		}
		if len(d.Title) > domain.MaxTitleLength {
			return domain.NewValidationError("title", "day %d: too long", d.DayNumber)
		}
		if len(d.Stops) > domain.MaxStopsPerDay {
			return domain.NewValidationError("stops", "day %d: at most %d stops", d.DayNumber, domain.MaxStopsPerDay)
		}
		if err := CheckStopOrder(d); err != nil {
			return err
		}
		for _, s := range d.Stops {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("day %d stop %d: %w", d.DayNumber, s.StopOrder, err)
			}
		}
	}
	return nil
}
