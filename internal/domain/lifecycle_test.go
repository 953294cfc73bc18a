package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/pkg/money"
)

func TestRefundTierFor(t *testing.T) {
	now := time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		daysOut  int
		expected int64
	}{
		{name: "exactly 45 days gives full refund", daysOut: 45, expected: 100},
		{name: "44 days gives half", daysOut: 44, expected: 50},
		{name: "21 days still half", daysOut: 21, expected: 50},
		{name: "20 days gives nothing", daysOut: 20, expected: 0},
		{name: "tour already started", daysOut: -1, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tourDate := DateOnly(now).AddDate(0, 0, tt.daysOut)
			days, fraction := RefundTierFor(now, tourDate)

			assert.Equal(t, tt.daysOut, days)
			assert.True(t, fraction.Equal(money.NewPercent(float64(tt.expected)).Decimal),
				"got %s", fraction.String())
		})
	}
}

func TestQuoteRefund(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	b := &Booking{
		TourDate:      now.AddDate(0, 0, 30),
		DepositAmount: 14157,
		DepositPaid:   true,
	}

	quote := QuoteRefund(b, now)
	assert.Equal(t, 30, quote.DaysBeforeTour)
	assert.Equal(t, money.Cents(7079), quote.Amount)

	b.DepositPaid = false
	assert.Equal(t, money.Cents(0), QuoteRefund(b, now).Amount)
}

func TestBookingTransitions(t *testing.T) {
	b := &Booking{Status: BookingStatusPending}

	require.NoError(t, b.TransitionTo(BookingStatusConfirmed))
	require.NoError(t, b.TransitionTo(BookingStatusAssigned))
	require.NoError(t, b.TransitionTo(BookingStatusInProgress))
	require.NoError(t, b.TransitionTo(BookingStatusCompleted))

	err := b.TransitionTo(BookingStatusCancelled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))

	var stateErr *InvalidStateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "completed", stateErr.From)
	assert.Equal(t, "cancelled", stateErr.To)
}

func TestBookingCannotSkipAssignment(t *testing.T) {
	b := &Booking{Status: BookingStatusConfirmed}
	assert.ErrorIs(t, b.TransitionTo(BookingStatusInProgress), ErrInvalidState)
	assert.Equal(t, BookingStatusConfirmed, b.Status)
}

func TestCancelledReachableFromEveryNonTerminalState(t *testing.T) {
	for _, s := range []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusAssigned, BookingStatusInProgress,
	} {
		assert.True(t, CanTransitionBooking(s, BookingStatusCancelled), s)
	}
	assert.False(t, CanTransitionBooking(BookingStatusCancelled, BookingStatusCancelled))
}

func TestProposalCanAcceptAt(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	for _, status := range []ProposalStatus{
		ProposalStatusDraft, ProposalStatusSent, ProposalStatusViewed,
		ProposalStatusAccepted, ProposalStatusExpired,
	} {
		p := &TripProposal{Status: status, ValidUntil: yesterday}
		assert.ErrorIs(t, p.CanAcceptAt(now), ErrInvalidState, "status %s past valid_until", status)
	}

	assert.NoError(t, (&TripProposal{Status: ProposalStatusSent, ValidUntil: tomorrow}).CanAcceptAt(now))
	assert.NoError(t, (&TripProposal{Status: ProposalStatusViewed, ValidUntil: now}).CanAcceptAt(now))
	assert.ErrorIs(t, (&TripProposal{Status: ProposalStatusDraft, ValidUntil: tomorrow}).CanAcceptAt(now), ErrInvalidState)
}

func TestComputeFinalPaymentWindow(t *testing.T) {
	b := &Booking{
		Status:        BookingStatusAssigned,
		TourDate:      time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		TotalPrice:    28314,
		DepositAmount: 14157,
	}

	before := ComputeFinalPaymentWindow(b, time.Date(2025, 7, 18, 9, 59, 0, 0, time.UTC), 48)
	assert.False(t, before.IsOpen)
	assert.Equal(t, time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC), before.OpensAt)
	assert.Equal(t, money.Cents(14157), before.AmountDue)

	open := ComputeFinalPaymentWindow(b, time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC), 48)
	assert.True(t, open.IsOpen)

	b.FinalPaymentPaid = true
	paid := ComputeFinalPaymentWindow(b, time.Date(2025, 7, 19, 10, 0, 0, 0, time.UTC), 48)
	assert.False(t, paid.IsOpen)
	assert.Equal(t, money.Cents(0), paid.AmountDue)
}
