package edit_proposal_itinerary

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
	"github.com/m04kA/SMC-TourService/internal/service/proposals"
	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
	"github.com/m04kA/SMC-TourService/pkg/logger"
)

type fakeService struct {
	got *models.EditItineraryRequest
	err error
}

func (f *fakeService) EditItinerary(ctx context.Context, id int64, req *models.EditItineraryRequest) (*models.EditItineraryResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.EditItineraryResponse{ProposalResponse: &models.ProposalResponse{ID: id, EndDate: *req.EndDate}}, nil
}

func serve(svc *fakeService, proposalID, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/proposals/{proposalId}/itinerary", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPut)

	req := httptest.NewRequest(http.MethodPut, "/proposals/"+proposalID+"/itinerary", strings.NewReader(body))
	req.Header.Set(middleware.UserIDHeader, "7")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestEditItineraryDecodesStopEdits(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "4", `{"endDate":"2025-09-14","stops":[{"action":"move","dayIndex":0,"stopIndex":2,"toIndex":0}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(7), svc.got.UserID)
	require.Len(t, svc.got.Stops, 1)
	assert.Equal(t, models.StopEditMove, svc.got.Stops[0].Action)
	assert.Equal(t, 2, svc.got.Stops[0].StopIndex)
	assert.Contains(t, rec.Body.String(), `"endDate":"2025-09-14"`)
}

func TestEditItineraryErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: proposals.ErrProposalNotFound, status: http.StatusNotFound},
		{name: "bad edit", err: domain.NewValidationError("stop_index", "out of range: 5"), status: http.StatusBadRequest},
		{name: "accepted", err: &domain.InvalidStateError{Entity: "proposal", From: "accepted", To: "accepted"}, status: http.StatusUnprocessableEntity},
		{name: "concurrent edit", err: &domain.ConflictError{Resource: "proposal", ResourceID: 4}, status: http.StatusConflict},
		{name: "internal", err: fmt.Errorf("%w: db", proposals.ErrInternal), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, "4", `{"endDate":"2025-09-14"}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := serve(&fakeService{}, "abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
