package accept_proposal

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

// Handle POST /api/v1/proposals/{proposalId}/accept
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	proposalID, err := handlers.PathID(r, "proposalId")
	if err != nil {
		h.logger.Warn("POST /proposals/{id}/accept - Invalid proposal ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProposalID)
		return
	}

	result, err := h.service.Accept(r.Context(), proposalID)
	if err != nil {
		switch {
		case errors.Is(err, proposals.ErrProposalNotFound):
			h.logger.Warn("POST /proposals/{id}/accept - Proposal not found: proposal_id=%d", proposalID)
			handlers.RespondNotFound(w, msgNotFound)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /proposals/{id}/accept - Rejected: proposal_id=%d, error=%v", proposalID, err)

		default:
			h.logger.Error("POST /proposals/{id}/accept - Failed to accept proposal: proposal_id=%d, error=%v",
				proposalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /proposals/{id}/accept - Proposal accepted: proposal_id=%d, booking_id=%d",
		proposalID, result.BookingID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
