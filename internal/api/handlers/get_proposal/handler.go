package get_proposal

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/service/proposals"
)

const (
	msgInvalidProposalID = "некорректный ID предложения"
	msgNotFound          = "предложение не найдено"
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

// Handle GET /api/v1/proposals/{proposalId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	proposalID, err := handlers.PathID(r, "proposalId")
	if err != nil {
		h.logger.Warn("GET /proposals/{id} - Invalid proposal ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProposalID)
		return
	}

	result, err := h.service.Get(r.Context(), proposalID)
	if err != nil {
		switch {
		case errors.Is(err, proposals.ErrProposalNotFound):
			h.logger.Warn("GET /proposals/{id} - Proposal not found: proposal_id=%d", proposalID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /proposals/{id} - Failed to get proposal: proposal_id=%d, error=%v", proposalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /proposals/{id} - Proposal retrieved: proposal_id=%d, status=%s", proposalID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
