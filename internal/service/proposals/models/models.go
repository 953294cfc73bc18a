package models

import (
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/money"
)

// TotalsResponse суммы предложения в минимальных единицах валюты
type TotalsResponse struct {
	SubtotalCents      int64 `json:"subtotalCents"`
	DiscountCents      int64 `json:"discountCents"`
	TaxesCents         int64 `json:"taxesCents"`
	GratuityCents      int64 `json:"gratuityCents"`
	TotalCents         int64 `json:"totalCents"`
	DepositAmountCents int64 `json:"depositAmountCents"`
	BalanceCents       int64 `json:"balanceCents"`

	TotalDisplay   string `json:"totalDisplay"` // "$283.14"
	DepositDisplay string `json:"depositDisplay"`
	BalanceDisplay string `json:"balanceDisplay"`
}

// StopResponse остановка дня
type StopResponse struct {
	ID                 int64   `json:"id"`
	StopOrder          int     `json:"stopOrder"`
	Type               string  `json:"type"`
	VenueKind          string  `json:"venueKind,omitempty"`
	VenueID            *int64  `json:"venueId,omitempty"`
	CustomName         string  `json:"customName,omitempty"`
	CustomAddress      string  `json:"customAddress,omitempty"`
	ScheduledTime      *string `json:"scheduledTime,omitempty"`
	DurationMinutes    int     `json:"durationMinutes"`
	PerPersonCostCents int64   `json:"perPersonCostCents"`
	FlatCostCents      int64   `json:"flatCostCents"`
	ReservationStatus  string  `json:"reservationStatus"`
	Notes              *string `json:"notes,omitempty"`
}

// DayResponse день маршрута
type DayResponse struct {
	ID        int64          `json:"id"`
	DayNumber int            `json:"dayNumber"`
	Date      string         `json:"date"`
	Title     string         `json:"title"`
	Notes     *string        `json:"notes,omitempty"`
	Stops     []StopResponse `json:"stops"`
}

// GuestResponse участник группы
type GuestResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	IsPrimary    bool    `json:"isPrimary"`
	DietaryNotes *string `json:"dietaryNotes,omitempty"`
}

// InclusionResponse дополнительная позиция
type InclusionResponse struct {
	ID              int64  `json:"id"`
	Kind            string `json:"kind"`
	Description     string `json:"description"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int64  `json:"unitPriceCents"`
	TotalPriceCents int64  `json:"totalPriceCents"`
}

// ProposalResponse предложение целиком
type ProposalResponse struct {
	ID                 int64               `json:"id"`
	ProposalNumber     string              `json:"proposalNumber"`
	Status             string              `json:"status"`
	CustomerName       string              `json:"customerName"`
	CustomerEmail      string              `json:"customerEmail"`
	CustomerPhone      *string             `json:"customerPhone,omitempty"`
	PartySize          int                 `json:"partySize"`
	StartDate          string              `json:"startDate"`
	EndDate            string              `json:"endDate"`
	StartTime          string              `json:"startTime"`
	DurationMinutes    int                 `json:"durationMinutes"`
	Currency           string              `json:"currency"`
	TaxRate            string              `json:"taxRate"`
	GratuityPercentage string              `json:"gratuityPercentage"`
	DepositPercentage  string              `json:"depositPercentage"`
	Totals             TotalsResponse      `json:"totals"`
	ValidUntil         time.Time           `json:"validUntil"`
	SentAt             *time.Time          `json:"sentAt,omitempty"`
	ViewedAt           *time.Time          `json:"viewedAt,omitempty"`
	AcceptedAt         *time.Time          `json:"acceptedAt,omitempty"`
	BookingID          *int64              `json:"bookingId,omitempty"`
	Notes              *string             `json:"notes,omitempty"`
	Days               []DayResponse       `json:"days"`
	Guests             []GuestResponse     `json:"guests"`
	Inclusions         []InclusionResponse `json:"inclusions"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// AcceptResponse результат принятия предложения
type AcceptResponse struct {
	ProposalID     int64  `json:"proposalId"`
	ProposalStatus string `json:"proposalStatus"`
	BookingID      int64  `json:"bookingId"`
	BookingStatus  string `json:"bookingStatus"`
	DepositCents   int64  `json:"depositCents"`
	BalanceCents   int64  `json:"balanceCents"`
}

// RecalculateResponse пересчитанные суммы
type RecalculateResponse struct {
	ProposalID int64          `json:"proposalId"`
	Totals     TotalsResponse `json:"totals"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// ExpireOverdueResponse количество просроченных предложений
type ExpireOverdueResponse struct {
	Expired int64 `json:"expired"`
}

// StopEditAction вид правки остановки
type StopEditAction string

const (
	StopEditAdd        StopEditAction = "add"
	StopEditRemove     StopEditAction = "remove"
	StopEditMove       StopEditAction = "move"
	StopEditChangeType StopEditAction = "change_type"
)

// EditItineraryRequest правка маршрута открытого предложения. Сначала дни
// пересчитываются по новому диапазону дат, затем по порядку применяются
// правки дней и остановок.
type EditItineraryRequest struct {
	StartDate *string    `json:"startDate,omitempty"` // "2025-09-12"; nil - без изменений
	EndDate   *string    `json:"endDate,omitempty"`
	Days      []DayEdit  `json:"days,omitempty"`
	Stops     []StopEdit `json:"stops,omitempty"`
	UserID    int64      `json:"-"`
}

// DayEdit заголовок и заметки дня; индексы с нуля
type DayEdit struct {
	DayIndex int     `json:"dayIndex"`
	Title    *string `json:"title,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// StopEdit одна правка остановки; индексы с нуля.
// add: Type и необязательные место и стоимость.
// remove: StopIndex. move: StopIndex -> ToIndex.
// change_type: StopIndex, Type и необязательное новое место.
type StopEdit struct {
	Action             StopEditAction `json:"action"`
	DayIndex           int            `json:"dayIndex"`
	StopIndex          int            `json:"stopIndex"`
	ToIndex            int            `json:"toIndex"`
	Type               string         `json:"type,omitempty"`
	VenueID            *int64         `json:"venueId,omitempty"`
	CustomName         *string        `json:"customName,omitempty"`
	CustomAddress      *string        `json:"customAddress,omitempty"`
	DurationMinutes    *int           `json:"durationMinutes,omitempty"`
	PerPersonCostCents *int64         `json:"perPersonCostCents,omitempty"`
	FlatCostCents      *int64         `json:"flatCostCents,omitempty"`
}

// EditItineraryResponse предложение после правки и предупреждения расчёта
type EditItineraryResponse struct {
	*ProposalResponse
	Warnings []string `json:"warnings,omitempty"`
}

// FromDomainTotals конвертирует суммы предложения
func FromDomainTotals(p *domain.TripProposal) TotalsResponse {
	return TotalsResponse{
		SubtotalCents:      int64(p.Totals.Subtotal),
		DiscountCents:      int64(p.DiscountAmount),
		TaxesCents:         int64(p.Totals.Taxes),
		GratuityCents:      int64(p.Totals.Gratuity),
		TotalCents:         int64(p.Totals.Total),
		DepositAmountCents: int64(p.Totals.DepositAmount),
		BalanceCents:       int64(p.Totals.Balance),
		TotalDisplay:       money.Format(p.Totals.Total, p.Currency),
		DepositDisplay:     money.Format(p.Totals.DepositAmount, p.Currency),
		BalanceDisplay:     money.Format(p.Totals.Balance, p.Currency),
	}
}

// FromDomainProposal конвертирует domain.TripProposal в ProposalResponse
func FromDomainProposal(p *domain.TripProposal) *ProposalResponse {
	resp := &ProposalResponse{
		ID:                 p.ID,
		ProposalNumber:     p.ProposalNumber,
		Status:             string(p.Status),
		CustomerName:       p.CustomerName,
		CustomerEmail:      p.CustomerEmail,
		CustomerPhone:      p.CustomerPhone,
		PartySize:          p.PartySize,
		StartDate:          p.StartDate.Format(domain.DateFormat),
		EndDate:            p.EndDate.Format(domain.DateFormat),
		StartTime:          p.StartTime.String(),
		DurationMinutes:    p.DurationMinutes,
		Currency:           p.Currency,
		TaxRate:            p.TaxRate.String(),
		GratuityPercentage: p.GratuityPercentage.String(),
		DepositPercentage:  p.DepositPercentage.String(),
		Totals:             FromDomainTotals(p),
		ValidUntil:         p.ValidUntil,
		SentAt:             p.SentAt,
		ViewedAt:           p.ViewedAt,
		AcceptedAt:         p.AcceptedAt,
		BookingID:          p.BookingID,
		Notes:              p.Notes,
		Days:               make([]DayResponse, 0, len(p.Days)),
		Guests:             make([]GuestResponse, 0, len(p.Guests)),
		Inclusions:         make([]InclusionResponse, 0, len(p.Inclusions)),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}

	for _, d := range p.Days {
		day := DayResponse{
			ID:        d.ID,
			DayNumber: d.DayNumber,
			Date:      d.Date.Format(domain.DateFormat),
			Title:     d.Title,
			Notes:     d.Notes,
			Stops:     make([]StopResponse, 0, len(d.Stops)),
		}
		for _, s := range d.Stops {
			day.Stops = append(day.Stops, fromDomainStop(s))
		}
		resp.Days = append(resp.Days, day)
	}

	for _, g := range p.Guests {
		resp.Guests = append(resp.Guests, GuestResponse{
			ID:           g.ID,
			Name:         g.Name,
			Email:        g.Email,
			Phone:        g.Phone,
			IsPrimary:    g.IsPrimary,
			DietaryNotes: g.DietaryNotes,
		})
	}

	for _, inc := range p.Inclusions {
		resp.Inclusions = append(resp.Inclusions, InclusionResponse{
			ID:              inc.ID,
			Kind:            string(inc.Kind),
			Description:     inc.Description,
			Quantity:        inc.Quantity,
			UnitPriceCents:  int64(inc.UnitPrice),
			TotalPriceCents: int64(inc.TotalPrice()),
		})
	}

	return resp
}

func fromDomainStop(s domain.Stop) StopResponse {
	resp := StopResponse{
		ID:                 s.ID,
		StopOrder:          s.StopOrder,
		Type:               string(s.Type),
		DurationMinutes:    s.DurationMinutes,
		PerPersonCostCents: int64(s.PerPersonCost),
		FlatCostCents:      int64(s.FlatCost),
		ReservationStatus:  string(s.ReservationStatus),
		Notes:              s.Notes,
	}
	if s.ScheduledTime != nil {
		t := s.ScheduledTime.String()
		resp.ScheduledTime = &t
	}
	if ref, ok := s.Venue(); ok {
		id := ref.VenueID
		resp.VenueKind = string(ref.Kind)
		resp.VenueID = &id
	}
	if place, ok := s.Custom(); ok {
		resp.CustomName = place.Name
		resp.CustomAddress = place.Address
	}
	return resp
}
