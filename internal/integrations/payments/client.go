package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/m04kA/SMC-TourService/pkg/money"
)

// intentAPI часть API PaymentIntents, которой пользуется клиент
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Confirm(id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент платёжного процессора поверх Stripe PaymentIntents.
// Данные карт через сервис не проходят.
type Client struct {
	intents intentAPI
	log     Logger
}

// NewClient создает клиент Stripe с секретным ключом
func NewClient(secretKey string, log Logger) *Client {
	return &Client{
		intents: &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		log:     log,
	}
}

// CreateIntent создаёт платёжное намерение на сумму req.Amount и возвращает его id.
// Бронирование и назначение платежа записываются в метаданные. Повтор с тем же
// IdempotencyKey возвращает то же намерение.
func (c *Client) CreateIntent(ctx context.Context, req IntentRequest) (string, error) {
	if req.Amount <= 0 {
		return "", ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata(metaBookingID, strconv.FormatInt(req.BookingID, 10))
	params.AddMetadata(metaPurpose, string(req.Purpose))

	intent, err := c.intents.New(params)
	if err != nil {
		c.log.Error("CreateIntent: stripe error for booking=%d %s amount=%s %s: %v",
			req.BookingID, req.Purpose, req.Amount, req.Currency, err)
		return "", fmt.Errorf("%w: create payment intent: %w", ErrProcessor, err)
	}

	c.log.Info("CreateIntent: payment intent %s created for booking=%d %s amount=%s %s",
		intent.ID, req.BookingID, req.Purpose, req.Amount, req.Currency)
	return intent.ID, nil
}

// ConfirmPayment проверяет состояние платёжного намерения. Намерение,
// ожидающее подтверждения, подтверждается.
func (c *Client) ConfirmPayment(ctx context.Context, ref string) (*Outcome, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := c.intents.Get(ref, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrIntentNotFound
		}
		c.log.Error("ConfirmPayment: stripe error for intent=%s: %v", ref, err)
		return nil, fmt.Errorf("%w: get payment intent: %w", ErrProcessor, err)
	}

	if intent.Status == stripe.PaymentIntentStatusRequiresConfirmation {
		confirmParams := &stripe.PaymentIntentConfirmParams{}
		confirmParams.Context = ctx

		intent, err = c.intents.Confirm(ref, confirmParams)
		if err != nil {
			c.log.Error("ConfirmPayment: failed to confirm intent=%s: %v", ref, err)
			return nil, fmt.Errorf("%w: confirm payment intent: %w", ErrProcessor, err)
		}
	}

	outcome := &Outcome{
		Ref:       intent.ID,
		Status:    string(intent.Status),
		Succeeded: intent.Status == stripe.PaymentIntentStatusSucceeded,
		Amount:    money.Cents(intent.AmountReceived),
		Currency:  string(intent.Currency),
		Purpose:   Purpose(intent.Metadata[metaPurpose]),
	}
	if raw, ok := intent.Metadata[metaBookingID]; ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			outcome.BookingID = id
		} else {
			c.log.Warn("ConfirmPayment: intent=%s has malformed booking_id=%q", ref, raw)
		}
	}

	c.log.Info("ConfirmPayment: intent=%s status=%s", ref, outcome.Status)
	return outcome, nil
}
