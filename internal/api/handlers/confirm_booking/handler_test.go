package confirm_booking

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/internal/api/middleware"
	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/service/bookings"
	"github.com/m04kA/SMC-TourService/internal/service/bookings/models"
	"github.com/m04kA/SMC-TourService/pkg/logger"
)

type fakeService struct {
	got *models.ConfirmRequest
	err error
}

func (f *fakeService) Confirm(ctx context.Context, bookingID int64, req *models.ConfirmRequest) (*models.BookingResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: bookingID, Status: "confirmed", DepositPaid: true}, nil
}

func serve(svc *fakeService, bookingID, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/bookings/{bookingId}/confirm", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/bookings/"+bookingID+"/confirm", strings.NewReader(body))
	req.Header.Set(middleware.UserIDHeader, "7")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestConfirmPassesUserAndRef(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "3", `{"paymentRef":"pi_123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(7), svc.got.UserID)
	assert.Equal(t, "pi_123", *svc.got.PaymentRef)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)
}

func TestConfirmErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: bookings.ErrBookingNotFound, status: http.StatusNotFound},
		{name: "unknown payment", err: fmt.Errorf("%w: pi_1", bookings.ErrPaymentRefNotFound), status: http.StatusBadRequest},
		{name: "processor down", err: fmt.Errorf("%w: timeout", bookings.ErrPaymentUnavailable), status: http.StatusBadGateway},
		{name: "not pending", err: &domain.InvalidStateError{Entity: "booking", From: "cancelled", To: "confirmed"}, status: http.StatusUnprocessableEntity},
		{name: "no ref", err: domain.NewValidationError("payment_ref", "is required"), status: http.StatusBadRequest},
		{name: "internal", err: fmt.Errorf("%w: db", bookings.ErrInternal), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, "3", `{"staffOverride":true}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestConfirmRejectsBadInput(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "abc", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "3", `{"unknown":1}`).Code)
}
