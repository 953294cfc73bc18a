package domain

import (
	"time"

	"github.com/m04kA/SMC-TourService/pkg/money"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

// ProposalStatus статус коммерческого предложения
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusSent     ProposalStatus = "sent"
	ProposalStatusViewed   ProposalStatus = "viewed"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusExpired  ProposalStatus = "expired"
)

// ProposalTotals рассчитанные суммы предложения
type ProposalTotals struct {
	Subtotal      money.Cents
	Taxes         money.Cents
	Gratuity      money.Cents
	Total         money.Cents
	DepositAmount money.Cents
	Balance       money.Cents
}

// TripProposal предложение на многодневную поездку
type TripProposal struct {
	ID             int64
	ProposalNumber string
	Status         ProposalStatus

	CustomerName  string
	CustomerEmail string
	CustomerPhone *string

	PartySize       int
	StartDate       time.Time
	EndDate         time.Time
	StartTime       types.TimeString
	DurationMinutes int

	Currency           string
	DepositPercentage  money.Percent
	GratuityPercentage money.Percent
	TaxRate            money.Percent
	DiscountAmount     money.Cents
	Totals             ProposalTotals

	ValidUntil time.Time
	SentAt     *time.Time
	ViewedAt   *time.Time
	AcceptedAt *time.Time
	BookingID  *int64
	Notes      *string

	Days       []Day
	Guests     []Guest
	Inclusions []Inclusion

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpiredAt true, если срок действия истёк к моменту now
func (p *TripProposal) IsExpiredAt(now time.Time) bool {
	return now.After(p.ValidUntil)
}

// CanAcceptAt принять можно только из sent/viewed и пока now <= valid_until
func (p *TripProposal) CanAcceptAt(now time.Time) error {
	if p.IsExpiredAt(now) {
		return &InvalidStateError{
			Entity: "proposal",
			From:   string(p.Status),
			To:     string(ProposalStatusAccepted),
			Reason: "proposal is past valid_until",
		}
	}
	if !CanTransitionProposal(p.Status, ProposalStatusAccepted) {
		return &InvalidStateError{
			Entity: "proposal",
			From:   string(p.Status),
			To:     string(ProposalStatusAccepted),
		}
	}
	return nil
}

// TransitionTo переводит предложение в новый статус по таблице переходов
func (p *TripProposal) TransitionTo(to ProposalStatus) error {
	if !CanTransitionProposal(p.Status, to) {
		return &InvalidStateError{
			Entity: "proposal",
			From:   string(p.Status),
			To:     string(to),
		}
	}
	p.Status = to
	return nil
}

// IsEditable пересчитывать и менять можно до принятия/истечения
func (p *TripProposal) IsEditable() bool {
	return p.Status == ProposalStatusDraft ||
		p.Status == ProposalStatusSent ||
		p.Status == ProposalStatusViewed
}

// AllStops все остановки всех дней по порядку
func (p *TripProposal) AllStops() []Stop {
	var stops []Stop
	for _, d := range p.Days {
		stops = append(stops, d.Stops...)
	}
	return stops
}
