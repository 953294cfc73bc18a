package domain

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-TourService/pkg/money"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

// StopType тип события в маршруте
type StopType string

const (
	StopTypePickup     StopType = "pickup"
	StopTypeDropoff    StopType = "dropoff"
	StopTypeWinery     StopType = "winery"
	StopTypeRestaurant StopType = "restaurant"
	StopTypeHotel      StopType = "hotel"
	StopTypeActivity   StopType = "activity"
	StopTypeCustom     StopType = "custom"
)

// Valid true для известных типов
func (t StopType) Valid() bool {
	switch t {
	case StopTypePickup, StopTypeDropoff, StopTypeWinery, StopTypeRestaurant,
		StopTypeHotel, StopTypeActivity, StopTypeCustom:
		return true
	}
	return false
}

// UsesVenue true, если остановка ссылается на площадку из справочника
func (t StopType) UsesVenue() bool {
	return t == StopTypeWinery || t == StopTypeRestaurant || t == StopTypeHotel
}

// VenueKind справочник площадок (winery, restaurant, hotel)
type VenueKind string

const (
	VenueKindWinery     VenueKind = "winery"
	VenueKindRestaurant VenueKind = "restaurant"
	VenueKindHotel      VenueKind = "hotel"
)

// VenueKind справочник, соответствующий типу остановки
func (t StopType) VenueKind() (VenueKind, bool) {
	if !t.UsesVenue() {
		return "", false
	}
	return VenueKind(t), true
}

// ReservationStatus статус брони на площадке
type ReservationStatus string

const (
	ReservationPending       ReservationStatus = "pending"
	ReservationConfirmed     ReservationStatus = "confirmed"
	ReservationNotApplicable ReservationStatus = "n/a"
)

// Valid проверяет, что статус брони известен
func (r ReservationStatus) Valid() bool {
	switch r {
	case ReservationPending, ReservationConfirmed, ReservationNotApplicable:
		return true
	}
	return false
}

// Place место остановки: либо ссылка на площадку, либо произвольный адрес.
// Реализуется только типами этого пакета.
type Place interface {
	isPlace()
}

// VenueRef ссылка на площадку из справочника
type VenueRef struct {
	Kind    VenueKind
	VenueID int64
}

func (VenueRef) isPlace() {}

// CustomPlace произвольное место (pickup, dropoff, activity, custom)
type CustomPlace struct {
	Name    string
	Address string
}

func (CustomPlace) isPlace() {}

// Stop одно событие дня
type Stop struct {
	ID                int64
	StopOrder         int
	Type              StopType
	Place             Place
	ScheduledTime     *types.TimeString
	DurationMinutes   int
	PerPersonCost     money.Cents
	FlatCost          money.Cents
	ReservationStatus ReservationStatus
	Notes             *string
}

// NewStop остановка по умолчанию: 60 минут, нулевая стоимость, бронь pending
func NewStop(stopType StopType, order int) Stop {
	return Stop{
		StopOrder:         order,
		Type:              stopType,
		DurationMinutes:   DefaultStopDurationMinutes,
		ReservationStatus: ReservationPending,
	}
}

// Cost стоимость остановки: flat + per_person * party
func (s Stop) Cost(partySize int) money.Cents {
	return s.FlatCost + s.PerPersonCost.MulInt(partySize)
}

// Venue ссылка на площадку, если остановка привязана к справочнику
func (s Stop) Venue() (VenueRef, bool) {
	ref, ok := s.Place.(VenueRef)
	return ref, ok
}

// Custom произвольное место, если задано
func (s Stop) Custom() (CustomPlace, bool) {
	place, ok := s.Place.(CustomPlace)
	return place, ok
}

// BindVenue привязывает площадку, заменяя любое ранее заданное место
func (s *Stop) BindVenue(venueID int64) error {
	kind, ok := s.Type.VenueKind()
	if !ok {
		return NewValidationError("venue_id", "stop type %s does not reference a venue", s.Type)
	}
	if venueID <= 0 {
		return NewValidationError("venue_id", "must be positive")
	}
	s.Place = VenueRef{Kind: kind, VenueID: venueID}
	return nil
}

// SetCustomPlace задаёт произвольное место, заменяя ссылку на площадку
func (s *Stop) SetCustomPlace(name, address string) error {
	if s.Type.UsesVenue() {
		return NewValidationError("custom_name", "stop type %s must reference a venue", s.Type)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return NewValidationError("custom_name", "is required")
	}
	s.Place = CustomPlace{Name: name, Address: strings.TrimSpace(address)}
	return nil
}

// ChangeType меняет тип; при смене режима места старое место сбрасывается
func (s *Stop) ChangeType(t StopType) error {
	if !t.Valid() {
		return NewValidationError("type", "unknown stop type %q", t)
	}
	if t.UsesVenue() != s.Type.UsesVenue() {
		s.Place = nil
	} else if ref, ok := s.Place.(VenueRef); ok {
		// другой справочник: id прежней площадки не имеет смысла
		if VenueKind(t) != ref.Kind {
			s.Place = nil
		}
	}
	s.Type = t
	return nil
}

// Validate проверяет инварианты одной остановки
func (s Stop) Validate() error {
	if !s.Type.Valid() {
		return NewValidationError("type", "unknown stop type %q", s.Type)
	}
	if s.FlatCost.IsNegative() {
		return NewValidationError("flat_cost", "must be non-negative")
	}
	if s.PerPersonCost.IsNegative() {
		return NewValidationError("per_person_cost", "must be non-negative")
	}
	if s.DurationMinutes <= 0 {
		return NewValidationError("duration_minutes", "must be positive")
	}
	if !s.ReservationStatus.Valid() {
		return NewValidationError("reservation_status", "unknown reservation status %q", s.ReservationStatus)
	}

	switch place := s.Place.(type) {
	case nil:
	case VenueRef:
		if !s.Type.UsesVenue() {
			return NewValidationError("venue_id", "stop type %s cannot reference a venue", s.Type)
		}
		if VenueKind(s.Type) != place.Kind {
			return NewValidationError("venue_id", "venue kind %s does not match stop type %s", place.Kind, s.Type)
		}
	case CustomPlace:
		if s.Type.UsesVenue() {
			return NewValidationError("custom_name", "stop type %s must reference a venue", s.Type)
		}
	}
	return nil
}

// Day один календарный день маршрута
type Day struct {
	ID        int64
	DayNumber int
	Date      time.Time
	Title     string
	Notes     *string
	Stops     []Stop
}

// Clone глубокая копия дня
func (d Day) Clone() Day {
	c := d
	if d.Notes != nil {
		notes := *d.Notes
		c.Notes = &notes
	}
	if d.Stops != nil {
		c.Stops = make([]Stop, len(d.Stops))
		for i, s := range d.Stops {
			c.Stops[i] = s.clone()
		}
	}
	return c
}

func (s Stop) clone() Stop {
	c := s
	if s.ScheduledTime != nil {
		t := *s.ScheduledTime
		c.ScheduledTime = &t
	}
	if s.Notes != nil {
		n := *s.Notes
		c.Notes = &n
	}
	return c
}

// Guest участник группы
type Guest struct {
	ID           int64
	Name         string
	Email        *string
	Phone        *string
	IsPrimary    bool
	DietaryNotes *string
}

// InclusionKind тип дополнительной позиции
type InclusionKind string

const (
	InclusionTransportation InclusionKind = "transportation"
	InclusionChauffeur      InclusionKind = "chauffeur"
	InclusionGratuity       InclusionKind = "gratuity"
	InclusionCustom         InclusionKind = "custom"
)

// Valid true для известных типов
func (k InclusionKind) Valid() bool {
	switch k {
	case InclusionTransportation, InclusionChauffeur, InclusionGratuity, InclusionCustom:
		return true
	}
	return false
}

// Inclusion оплачиваемая позиция, не привязанная к остановке
type Inclusion struct {
	ID          int64
	Kind        InclusionKind
	Description string
	Quantity    int
	UnitPrice   money.Cents
}

// TotalPrice всегда quantity * unit_price, отдельно не хранится
func (i Inclusion) TotalPrice() money.Cents {
	return i.UnitPrice.MulInt(i.Quantity)
}
