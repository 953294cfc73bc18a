package create_proposal

import (
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
	createProposal "github.com/m04kA/SMC-TourService/internal/usecase/create_proposal"
	"github.com/m04kA/SMC-TourService/pkg/money"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

// StopRequest остановка дня
type StopRequest struct {
	Type               string  `json:"type"`
	VenueID            *int64  `json:"venueId,omitempty"`
	CustomName         *string `json:"customName,omitempty"`
	CustomAddress      *string `json:"customAddress,omitempty"`
	ScheduledTime      *string `json:"scheduledTime,omitempty"` // "14:30"
	DurationMinutes    int     `json:"durationMinutes,omitempty"`
	PerPersonCostCents int64   `json:"perPersonCostCents"`
	FlatCostCents      int64   `json:"flatCostCents"`
	ReservationStatus  string  `json:"reservationStatus,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// DayRequest детали дня по порядку диапазона дат
type DayRequest struct {
	Title string        `json:"title,omitempty"`
	Notes *string       `json:"notes,omitempty"`
	Stops []StopRequest `json:"stops"`
}

// GuestRequest участник группы
type GuestRequest struct {
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	IsPrimary    bool    `json:"isPrimary"`
	DietaryNotes *string `json:"dietaryNotes,omitempty"`
}

// InclusionRequest дополнительная позиция
type InclusionRequest struct {
	Kind           string `json:"kind"`
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// CreateProposalRequest HTTP request model
type CreateProposalRequest struct {
	CustomerName       string             `json:"customerName"`
	CustomerEmail      string             `json:"customerEmail"`
	CustomerPhone      *string            `json:"customerPhone,omitempty"`
	StartDate          string             `json:"startDate"` // "2025-09-12"
	EndDate            string             `json:"endDate"`
	StartTime          string             `json:"startTime"` // "10:00"
	DurationMinutes    int                `json:"durationMinutes"`
	PartySize          int                `json:"partySize"`
	Currency           string             `json:"currency,omitempty"`
	TaxRate            *string            `json:"taxRate,omitempty"` // "8.9"
	GratuityPercentage *string            `json:"gratuityPercentage,omitempty"`
	DepositPercentage  *string            `json:"depositPercentage,omitempty"`
	DiscountCents      int64              `json:"discountCents"`
	DiscountAmount     *string            `json:"discountAmount,omitempty"` // "25.00", вместо discountCents
	ValidUntil         *time.Time         `json:"validUntil,omitempty"`
	Notes              *string            `json:"notes,omitempty"`
	Days               []DayRequest       `json:"days"`
	Guests             []GuestRequest     `json:"guests"`
	Inclusions         []InclusionRequest `json:"inclusions"`
}

// CreateProposalResponse HTTP response model
type CreateProposalResponse struct {
	*models.ProposalResponse
	Warnings []string `json:"warnings,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// (с разбором дат, времени и процентов). Ошибки разбора - ValidationError.
func (r *CreateProposalRequest) ToUseCaseRequest(userID int64) (*createProposal.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, domain.NewValidationError("start_date", "expected YYYY-MM-DD, got %q", r.StartDate)
	}
	endDate, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, domain.NewValidationError("end_date", "expected YYYY-MM-DD, got %q", r.EndDate)
	}
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, domain.NewValidationError("start_time", "expected HH:MM, got %q", r.StartTime)
	}

	req := &createProposal.Request{
		UserID:          userID,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		StartDate:       startDate,
		EndDate:         endDate,
		StartTime:       startTime,
		DurationMinutes: r.DurationMinutes,
		PartySize:       r.PartySize,
		Currency:        r.Currency,
		Discount:        money.Cents(r.DiscountCents),
		ValidUntil:      r.ValidUntil,
		Notes:           r.Notes,
	}

	if r.DiscountAmount != nil {
		if r.DiscountCents != 0 {
			return nil, domain.NewValidationError("discount_amount", "set either discountCents or discountAmount")
		}
		if req.Discount, err = money.FromDecimalString(*r.DiscountAmount); err != nil {
			return nil, domain.NewValidationError("discount_amount", "invalid amount %q", *r.DiscountAmount)
		}
	}

	if req.TaxRatePct, err = parsePercent("tax_rate", r.TaxRate); err != nil {
		return nil, err
	}
	if req.GratuityPct, err = parsePercent("gratuity_percentage", r.GratuityPercentage); err != nil {
		return nil, err
	}
	if req.DepositPct, err = parsePercent("deposit_percentage", r.DepositPercentage); err != nil {
		return nil, err
	}

	for _, d := range r.Days {
		day := createProposal.DayInput{Title: d.Title, Notes: d.Notes}
		for _, s := range d.Stops {
			stop, err := s.toUseCase()
			if err != nil {
				return nil, err
			}
			day.Stops = append(day.Stops, stop)
		}
		req.Days = append(req.Days, day)
	}

	for _, g := range r.Guests {
		req.Guests = append(req.Guests, domain.Guest{
			Name:         g.Name,
			Email:        g.Email,
			Phone:        g.Phone,
			IsPrimary:    g.IsPrimary,
			DietaryNotes: g.DietaryNotes,
		})
	}

	for _, inc := range r.Inclusions {
		req.Inclusions = append(req.Inclusions, domain.Inclusion{
			Kind:        domain.InclusionKind(inc.Kind),
			Description: inc.Description,
			Quantity:    inc.Quantity,
			UnitPrice:   money.Cents(inc.UnitPriceCents),
		})
	}

	return req, nil
}

func (s StopRequest) toUseCase() (createProposal.StopInput, error) {
	stop := createProposal.StopInput{
		Type:              domain.StopType(s.Type),
		VenueID:           s.VenueID,
		CustomName:        s.CustomName,
		CustomAddress:     s.CustomAddress,
		DurationMinutes:   s.DurationMinutes,
		PerPersonCost:     money.Cents(s.PerPersonCostCents),
		FlatCost:          money.Cents(s.FlatCostCents),
		ReservationStatus: domain.ReservationStatus(s.ReservationStatus),
		Notes:             s.Notes,
	}
	if s.ScheduledTime != nil {
		t, err := types.NewTimeStringFromString(*s.ScheduledTime)
		if err != nil {
			return stop, domain.NewValidationError("scheduled_time", "expected HH:MM, got %q", *s.ScheduledTime)
		}
		stop.ScheduledTime = &t
	}
	return stop, nil
}

func parsePercent(field string, s *string) (*money.Percent, error) {
	if s == nil {
		return nil, nil
	}
	p, err := money.ParsePercent(*s)
	if err != nil {
		return nil, domain.NewValidationError(field, "invalid percentage %q", *s)
	}
	return &p, nil
}
