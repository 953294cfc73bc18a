package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/internal/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		ok     bool
	}{
		{name: "validation", err: domain.NewValidationError("party_size", "must be positive"), status: http.StatusBadRequest, ok: true},
		{name: "conflict", err: &domain.ConflictError{Resource: "driver", ResourceID: 1, Reason: "busy"}, status: http.StatusConflict, ok: true},
		{name: "capacity", err: &domain.CapacityError{VehicleID: 2, Capacity: 4, PartySize: 6, Deficit: 2}, status: http.StatusConflict, ok: true},
		{name: "invalid state", err: &domain.InvalidStateError{Entity: "booking", From: "completed", To: "cancelled"}, status: http.StatusUnprocessableEntity, ok: true},
		{name: "wrapped conflict", err: fmt.Errorf("assign: %w", domain.ErrConflict), status: http.StatusConflict, ok: true},
		{name: "internal", err: errors.New("boom"), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := StatusFor(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestRespondDomainErrorIncludesField(t *testing.T) {
	rec := httptest.NewRecorder()

	ok := RespondDomainError(rec, domain.NewValidationError("venue_id", "winery 99 not found"))
	require.True(t, ok)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Error: "winery 99 not found", Field: "venue_id"}, body)
}

func TestRespondDomainErrorIgnoresOtherErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	assert.False(t, RespondDomainError(rec, errors.New("db down")))
	assert.Zero(t, rec.Body.Len())
}

func TestPathID(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": "15", "bad": "x", "zero": "0"})

	id, err := PathID(req, "bookingId")
	require.NoError(t, err)
	assert.Equal(t, int64(15), id)

	for _, name := range []string{"bad", "zero", "missing"} {
		_, err := PathID(req, name)
		assert.Error(t, err, name)
	}
}
