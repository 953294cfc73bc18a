package create_proposal

import (
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
	"github.com/m04kA/SMC-TourService/pkg/money"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

// Defaults значения по умолчанию из конфигурации
type Defaults struct {
	Currency     string
	TaxRatePct   money.Percent
	GratuityPct  money.Percent
	DepositPct   money.Percent
	ValidityDays int
}

// StopInput остановка дня. Для winery/restaurant/hotel задаётся VenueID,
// для остальных типов CustomName и CustomAddress.
type StopInput struct {
	Type              domain.StopType
	VenueID           *int64
	CustomName        *string
	CustomAddress     *string
	ScheduledTime     *types.TimeString
	DurationMinutes   int // 0 - длительность по умолчанию
	PerPersonCost     money.Cents
	FlatCost          money.Cents
	ReservationStatus domain.ReservationStatus // пусто - pending
	Notes             *string
}

// DayInput детали дня; i-й элемент относится к i-му дню диапазона
type DayInput struct {
	Title string
	Notes *string
	Stops []StopInput
}

// Request модель запроса на создание предложения
type Request struct {
	UserID int64

	CustomerName  string
	CustomerEmail string
	CustomerPhone *string

	StartDate       time.Time
	EndDate         time.Time
	StartTime       types.TimeString
	DurationMinutes int
	PartySize       int

	Currency    string         // пусто - из конфигурации
	TaxRatePct  *money.Percent // nil - из конфигурации
	GratuityPct *money.Percent
	DepositPct  *money.Percent
	Discount    money.Cents
	ValidUntil  *time.Time // nil - now + ValidityDays
	Notes       *string

	Days       []DayInput
	Guests     []domain.Guest
	Inclusions []domain.Inclusion
}

// Response созданное предложение и предупреждения расчёта
type Response struct {
	Proposal *models.ProposalResponse
	Warnings []string
}
