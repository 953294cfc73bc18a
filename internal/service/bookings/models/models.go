package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/pricing"
	"github.com/m04kA/SMC-TourService/pkg/money"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ConfirmRequest подтверждение бронирования после оплаты депозита.
// Без PaymentRef подтверждение возможно только с StaffOverride.
type ConfirmRequest struct {
	PaymentRef    *string `json:"paymentRef,omitempty"`
	StaffOverride bool    `json:"staffOverride"`
	UserID        int64   `json:"-"`
}

// CancelRequest запрос на отмену бронирования
type CancelRequest struct {
	Reason string `json:"reason"`
	UserID int64  `json:"-"`
}

// FinalPaymentRequest запись оплаты остатка
type FinalPaymentRequest struct {
	PaymentRef string `json:"paymentRef"`
	UserID     int64  `json:"-"`
}

// ListRequest фильтр списка бронирований
type ListRequest struct {
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
	Statuses []string   `json:"statuses,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{From: r.From, To: r.To}
	for _, s := range r.Statuses {
		status, err := ToDomainBookingStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	return filter, nil
}

// PricingStop стоимость одной остановки
type PricingStop struct {
	FlatCostCents      int64 `json:"flatCostCents"`
	PerPersonCostCents int64 `json:"perPersonCostCents"`
}

// PricingItem строка дополнительных услуг
type PricingItem struct {
	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unitPriceCents"`
}

// UpdatePricingRequest новые входные данные для пересчёта цены бронирования.
// Ставки передаются строками процентов ("8.5").
type UpdatePricingRequest struct {
	Stops              []PricingStop `json:"stops"`
	Inclusions         []PricingItem `json:"inclusions"`
	PartySize          int           `json:"partySize"`
	DiscountCents      int64         `json:"discountCents"`
	TaxRate            string        `json:"taxRate"`
	GratuityPercentage string        `json:"gratuityPercentage"`
	DepositPercentage  string        `json:"depositPercentage"`
}

// ToInput конвертирует request во вход движка цен
func (r *UpdatePricingRequest) ToInput() (pricing.Input, error) {
	in := pricing.Input{
		PartySize: r.PartySize,
		Discount:  money.Cents(r.DiscountCents),
	}

	var err error
	if in.TaxRatePct, err = parsePercent("tax_rate", r.TaxRate); err != nil {
		return in, err
	}
	if in.GratuityPct, err = parsePercent("gratuity_percentage", r.GratuityPercentage); err != nil {
		return in, err
	}
	if in.DepositPct, err = parsePercent("deposit_percentage", r.DepositPercentage); err != nil {
		return in, err
	}

	for _, s := range r.Stops {
		in.Stops = append(in.Stops, pricing.StopCost{
			FlatCost:      money.Cents(s.FlatCostCents),
			PerPersonCost: money.Cents(s.PerPersonCostCents),
		})
	}
	for _, it := range r.Inclusions {
		in.Inclusions = append(in.Inclusions, pricing.LineItem{
			Quantity:  it.Quantity,
			UnitPrice: money.Cents(it.UnitPriceCents),
		})
	}
	return in, nil
}

func parsePercent(field, s string) (money.Percent, error) {
	if s == "" {
		return money.Percent{}, nil
	}
	p, err := money.ParsePercent(s)
	if err != nil {
		return p, domain.NewValidationError(field, "invalid percentage %q", s)
	}
	return p, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                      int64      `json:"id"`
	ProposalID              *int64     `json:"proposalId,omitempty"`
	CustomerName            string     `json:"customerName"`
	CustomerEmail           string     `json:"customerEmail"`
	CustomerPhone           *string    `json:"customerPhone,omitempty"`
	TourDate                string     `json:"tourDate"`
	EndDate                 string     `json:"endDate"`
	StartTime               string     `json:"startTime"`
	DurationMinutes         int        `json:"durationMinutes"`
	PartySize               int        `json:"partySize"`
	PickupLocation          *string    `json:"pickupLocation,omitempty"`
	DropoffLocation         *string    `json:"dropoffLocation,omitempty"`
	Status                  string     `json:"status"`
	Currency                string     `json:"currency"`
	BasePriceCents          int64      `json:"basePriceCents"`
	TotalPriceCents         int64      `json:"totalPriceCents"`
	TotalPriceDisplay       string     `json:"totalPriceDisplay"`
	DepositAmountCents      int64      `json:"depositAmountCents"`
	DepositPaid             bool       `json:"depositPaid"`
	DepositPaymentRef       *string    `json:"depositPaymentRef,omitempty"`
	FinalPaymentAmountCents int64      `json:"finalPaymentAmountCents"`
	FinalPaymentPaid        bool       `json:"finalPaymentPaid"`
	Notes                   *string    `json:"notes,omitempty"`
	CancellationReason      *string    `json:"cancellationReason,omitempty"`
	CancelledAt             *time.Time `json:"cancelledAt,omitempty"`
	RefundAmountCents       *int64     `json:"refundAmountCents,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// PaymentIntentResponse созданное платёжное намерение на депозит или остаток
type PaymentIntentResponse struct {
	BookingID   int64  `json:"bookingId"`
	Purpose     string `json:"purpose"`
	PaymentRef  string `json:"paymentRef"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

// CancellationResult итог отмены с расчётом возврата
type CancellationResult struct {
	BookingID         int64  `json:"bookingId"`
	Status            string `json:"status"`
	DaysBeforeTour    int    `json:"daysBeforeTour"`
	RefundFraction    string `json:"refundFraction"`
	RefundAmountCents int64  `json:"refundAmountCents"`
	AssignmentRelease bool   `json:"assignmentReleased"`
}

// PaymentScheduleResponse расписание оплаты: депозит и окно оплаты остатка
type PaymentScheduleResponse struct {
	BookingID          int64     `json:"bookingId"`
	Currency           string    `json:"currency"`
	TotalPriceCents    int64     `json:"totalPriceCents"`
	DepositAmountCents int64     `json:"depositAmountCents"`
	DepositPaid        bool      `json:"depositPaid"`
	FinalPaymentOpens  time.Time `json:"finalPaymentOpensAt"`
	FinalPaymentIsOpen bool      `json:"finalPaymentIsOpen"`
	FinalPaymentPaid   bool      `json:"finalPaymentPaid"`
	AmountDueCents     int64     `json:"amountDueCents"`
}

// Конвертеры

// FromDomainBooking конвертирует domain.Booking в BookingResponse
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:                      b.ID,
		ProposalID:              b.ProposalID,
		CustomerName:            b.CustomerName,
		CustomerEmail:           b.CustomerEmail,
		CustomerPhone:           b.CustomerPhone,
		TourDate:                b.TourDate.Format(domain.DateFormat),
		EndDate:                 b.EndDate.Format(domain.DateFormat),
		StartTime:               b.StartTime.String(),
		DurationMinutes:         b.DurationMinutes,
		PartySize:               b.PartySize,
		PickupLocation:          b.PickupLocation,
		DropoffLocation:         b.DropoffLocation,
		Status:                  string(b.Status),
		Currency:                b.Currency,
		BasePriceCents:          int64(b.BasePrice),
		TotalPriceCents:         int64(b.TotalPrice),
		TotalPriceDisplay:       money.Format(b.TotalPrice, b.Currency),
		DepositAmountCents:      int64(b.DepositAmount),
		DepositPaid:             b.DepositPaid,
		DepositPaymentRef:       b.DepositPaymentRef,
		FinalPaymentAmountCents: int64(b.FinalPaymentAmount),
		FinalPaymentPaid:        b.FinalPaymentPaid,
		Notes:                   b.Notes,
		CancellationReason:      b.CancellationReason,
		CancelledAt:             b.CancelledAt,
		CreatedAt:               b.CreatedAt,
		UpdatedAt:               b.UpdatedAt,
	}
	if b.RefundAmount != nil {
		refund := int64(*b.RefundAmount)
		resp.RefundAmountCents = &refund
	}
	return resp
}

// FromDomainBookings конвертирует список бронирований
func FromDomainBookings(bookings []*domain.Booking) *BookingListResponse {
	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, *FromDomainBooking(b))
	}
	return &BookingListResponse{Bookings: items, Total: len(items)}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	status := domain.BookingStatus(s)
	switch status {
	case domain.BookingStatusPending,
		domain.BookingStatusConfirmed,
		domain.BookingStatusAssigned,
		domain.BookingStatusInProgress,
		domain.BookingStatusCompleted,
		domain.BookingStatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}
