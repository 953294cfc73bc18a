package payments

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/m04kA/SMC-TourService/pkg/logger"
	"github.com/m04kA/SMC-TourService/pkg/money"
)

type fakeIntents struct {
	created   *stripe.PaymentIntentParams
	intent    *stripe.PaymentIntent
	err       error
	confirmed bool
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.created = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_new", Status: stripe.PaymentIntentStatusRequiresPaymentMethod}, nil
}

func (f *fakeIntents) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

func (f *fakeIntents) Confirm(id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error) {
	f.confirmed = true
	confirmed := *f.intent
	confirmed.Status = stripe.PaymentIntentStatusSucceeded
	confirmed.AmountReceived = confirmed.Amount
	return &confirmed, nil
}

func newTestClient(f *fakeIntents) *Client {
	return &Client{intents: f, log: logger.NewNop()}
}

func TestCreateIntent(t *testing.T) {
	f := &fakeIntents{}

	ref, err := newTestClient(f).CreateIntent(context.Background(), IntentRequest{
		BookingID:      7,
		Purpose:        PurposeDeposit,
		Amount:         14157,
		Currency:       "USD",
		IdempotencyKey: "booking-7-deposit",
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_new", ref)
	assert.Equal(t, int64(14157), *f.created.Amount)
	assert.Equal(t, "usd", *f.created.Currency)
	assert.Equal(t, "booking-7-deposit", *f.created.IdempotencyKey)
	assert.Equal(t, "7", f.created.Metadata["booking_id"])
	assert.Equal(t, "deposit", f.created.Metadata["purpose"])
}

func TestCreateIntentRejectsZeroAmount(t *testing.T) {
	_, err := newTestClient(&fakeIntents{}).CreateIntent(context.Background(), IntentRequest{BookingID: 1, Purpose: PurposeFinal, Currency: "usd"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestConfirmPayment(t *testing.T) {
	f := &fakeIntents{intent: &stripe.PaymentIntent{
		ID: "pi_1", Status: stripe.PaymentIntentStatusSucceeded, AmountReceived: 14157, Currency: "usd",
		Metadata: map[string]string{"booking_id": "7", "purpose": "deposit"},
	}}

	outcome, err := newTestClient(f).ConfirmPayment(context.Background(), "pi_1")
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, money.Cents(14157), outcome.Amount)
	assert.Equal(t, int64(7), outcome.BookingID)
	assert.Equal(t, PurposeDeposit, outcome.Purpose)
	assert.False(t, f.confirmed)
}

func TestConfirmPaymentConfirmsPendingIntent(t *testing.T) {
	f := &fakeIntents{intent: &stripe.PaymentIntent{
		ID: "pi_2", Status: stripe.PaymentIntentStatusRequiresConfirmation, Amount: 5000,
	}}

	outcome, err := newTestClient(f).ConfirmPayment(context.Background(), "pi_2")
	require.NoError(t, err)
	assert.True(t, f.confirmed)
	assert.True(t, outcome.Succeeded)
}

func TestConfirmPaymentNotSucceeded(t *testing.T) {
	f := &fakeIntents{intent: &stripe.PaymentIntent{ID: "pi_3", Status: stripe.PaymentIntentStatusRequiresPaymentMethod}}

	outcome, err := newTestClient(f).ConfirmPayment(context.Background(), "pi_3")
	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, "requires_payment_method", outcome.Status)
}

func TestConfirmPaymentNotFound(t *testing.T) {
	f := &fakeIntents{err: &stripe.Error{HTTPStatusCode: http.StatusNotFound, Msg: "No such payment_intent"}}

	_, err := newTestClient(f).ConfirmPayment(context.Background(), "pi_missing")
	assert.ErrorIs(t, err, ErrIntentNotFound)

	f.err = errors.New("timeout")
	_, err = newTestClient(f).ConfirmPayment(context.Background(), "pi_x")
	assert.ErrorIs(t, err, ErrProcessor)
}

func TestConfirmPaymentWithoutMetadata(t *testing.T) {
	f := &fakeIntents{intent: &stripe.PaymentIntent{
		ID: "pi_4", Status: stripe.PaymentIntentStatusSucceeded, AmountReceived: 100, Currency: "usd",
		Metadata: map[string]string{"booking_id": "not-a-number"},
	}}

	outcome, err := newTestClient(f).ConfirmPayment(context.Background(), "pi_4")
	require.NoError(t, err)
	assert.Zero(t, outcome.BookingID)
	assert.Empty(t, outcome.Purpose)
}
