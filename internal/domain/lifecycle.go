package domain

import (
	"time"

	"github.com/m04kA/SMC-TourService/pkg/money"
)

// bookingTransitions допустимые переходы бронирования
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusAssigned, BookingStatusCancelled},
	BookingStatusAssigned:   {BookingStatusConfirmed, BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

// proposalTransitions допустимые переходы предложения
var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusDraft:    {ProposalStatusSent, ProposalStatusExpired},
	ProposalStatusSent:     {ProposalStatusViewed, ProposalStatusAccepted, ProposalStatusExpired},
	ProposalStatusViewed:   {ProposalStatusAccepted, ProposalStatusExpired},
	ProposalStatusAccepted: {},
	ProposalStatusExpired:  {},
}

// CanTransitionBooking проверяет переход по таблице
func CanTransitionBooking(from, to BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionProposal проверяет переход по таблице
func CanTransitionProposal(from, to ProposalStatus) bool {
	for _, s := range proposalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// RefundQuote результат расчёта возврата депозита
type RefundQuote struct {
	DaysBeforeTour int
	Fraction       money.Percent
	Amount         money.Cents
}

// RefundTierFor доля возврата депозита по числу дней до тура:
// >=45 дней 100%, 21..44 дня 50%, меньше 21 дня 0%.
// Считается в момент отмены, не кэшируется.
func RefundTierFor(now, tourDate time.Time) (int, money.Percent) {
	days := DaysBetween(now, tourDate)
	switch {
	case days >= FullRefundMinDays:
		return days, money.NewPercent(100)
	case days >= PartialRefundMinDays:
		return days, money.NewPercent(50)
	default:
		return days, money.NewPercent(0)
	}
}

// QuoteRefund возврат по оплаченному депозиту бронирования
func QuoteRefund(b *Booking, now time.Time) RefundQuote {
	days, fraction := RefundTierFor(now, b.TourDate)

	quote := RefundQuote{DaysBeforeTour: days, Fraction: fraction}
	if b.DepositPaid {
		quote.Amount = fraction.Of(b.DepositAmount)
	}
	return quote
}

// FinalPaymentWindow окно оплаты остатка (рекомендательное, без автосписания)
type FinalPaymentWindow struct {
	OpensAt   time.Time
	IsOpen    bool
	Paid      bool
	AmountDue money.Cents
}

// ComputeFinalPaymentWindow окно открывается за windowHours до начала тура,
// пока остаток не оплачен. Сумма пересчитывается из текущих total и deposit.
func ComputeFinalPaymentWindow(b *Booking, now time.Time, windowHours int) FinalPaymentWindow {
	opensAt := b.StartsAt().Add(-time.Duration(windowHours) * time.Hour)

	w := FinalPaymentWindow{
		OpensAt: opensAt,
		Paid:    b.FinalPaymentPaid,
	}
	if !b.FinalPaymentPaid {
		w.AmountDue = b.BalanceDue()
	}
	w.IsOpen = !b.FinalPaymentPaid &&
		b.Status != BookingStatusCancelled &&
		!now.Before(opensAt)
	return w
}
