package domain

import (
	"time"

	"github.com/m04kA/SMC-TourService/pkg/money"
	"github.com/m04kA/SMC-TourService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusAssigned   BookingStatus = "assigned"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// Booking подтверждённый (или ожидающий оплаты) тур на один или несколько дней.
// Бронирование не удаляется, только переводится в cancelled.
type Booking struct {
	ID         int64
	ProposalID *int64

	CustomerName  string
	CustomerEmail string
	CustomerPhone *string

	// TourDate первый день тура, EndDate последний (для однодневного совпадают)
	TourDate        time.Time
	EndDate         time.Time
	StartTime       types.TimeString
	DurationMinutes int // длительность тура в каждый из дней
	PartySize       int

	PickupLocation  *string
	DropoffLocation *string

	Status BookingStatus

	Currency           string
	BasePrice          money.Cents
	TotalPrice         money.Cents
	DepositAmount      money.Cents
	DepositPaid        bool
	DepositPaymentRef  *string
	FinalPaymentAmount money.Cents
	FinalPaymentPaid   bool
	FinalPaymentRef    *string

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time
	RefundAmount       *money.Cents

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal true для completed и cancelled
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// Window ежедневное окно тура [start, start+duration)
func (b *Booking) Window() types.Window {
	return types.NewWindow(b.StartTime, b.DurationMinutes)
}

// Dates все календарные дни тура
func (b *Booking) Dates() []time.Time {
	return DatesInRange(b.TourDate, b.EndDate)
}

// StartsAt момент начала тура (первый день + время начала)
func (b *Booking) StartsAt() time.Time {
	return b.StartTime.On(b.TourDate)
}

// BalanceDue остаток к оплате: всегда пересчитывается из total и deposit
func (b *Booking) BalanceDue() money.Cents {
	return b.TotalPrice - b.DepositAmount
}

// TransitionTo переводит бронирование в новый статус по таблице переходов
func (b *Booking) TransitionTo(to BookingStatus) error {
	if !CanTransitionBooking(b.Status, to) {
		return &InvalidStateError{
			Entity: "booking",
			From:   string(b.Status),
			To:     string(to),
		}
	}
	b.Status = to
	return nil
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	From     *time.Time
	To       *time.Time
	Statuses []BookingStatus
}
