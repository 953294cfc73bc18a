package edit_proposal_itinerary

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/api/middleware"
	"github.com/m04kA/SMC-TourService/internal/service/proposals"
	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
)

const (
	msgInvalidProposalID  = "некорректный ID предложения"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "предложение не найдено"
)

type Handler struct {
	service ProposalService
	logger  Logger
}

func NewHandler(service ProposalService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/proposals/{proposalId}/itinerary
// Body: {"endDate": "2025-09-14", "stops": [{"action": "move", "dayIndex": 0, "stopIndex": 2, "toIndex": 0}]}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	proposalID, err := handlers.PathID(r, "proposalId")
	if err != nil {
		h.logger.Warn("PUT /proposals/{id}/itinerary - Invalid proposal ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProposalID)
		return
	}

	var req models.EditItineraryRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /proposals/{id}/itinerary - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, _ = middleware.GetUserID(r.Context())

	result, err := h.service.EditItinerary(r.Context(), proposalID, &req)
	if err != nil {
		switch {
		case errors.Is(err, proposals.ErrProposalNotFound):
			h.logger.Warn("PUT /proposals/{id}/itinerary - Proposal not found: proposal_id=%d", proposalID)
			handlers.RespondNotFound(w, msgNotFound)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("PUT /proposals/{id}/itinerary - Rejected: proposal_id=%d, error=%v", proposalID, err)

		default:
			h.logger.Error("PUT /proposals/{id}/itinerary - Failed: proposal_id=%d, error=%v", proposalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /proposals/{id}/itinerary - Itinerary updated: proposal_id=%d, user_id=%d, days=%d, total=%d",
		proposalID, req.UserID, len(result.Days), result.Totals.TotalCents)
	handlers.RespondJSON(w, http.StatusOK, result)
}
