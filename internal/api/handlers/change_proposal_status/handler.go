package change_proposal_status

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/service/proposals"
	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
)

const (
	msgInvalidProposalID = "некорректный ID предложения"
	msgNotFound          = "предложение не найдено"
)

// Action переход, который выполняет обработчик
type Action string

const (
	ActionSend   Action = "send"
	ActionView   Action = "view"
	ActionExpire Action = "expire"
)

type Handler struct {
	service ProposalService
	action  Action
	logger  Logger
}

func NewHandler(service ProposalService, action Action, logger Logger) *Handler {
	return &Handler{
		service: service,
		action:  action,
		logger:  logger,
	}
}

// Handle POST /api/v1/proposals/{proposalId}/send, /view, /expire
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	proposalID, err := handlers.PathID(r, "proposalId")
	if err != nil {
		h.logger.Warn("POST /proposals/{id}/%s - Invalid proposal ID: %v", h.action, err)
		handlers.RespondBadRequest(w, msgInvalidProposalID)
		return
	}

	result, err := h.apply(r.Context(), proposalID)
	if err != nil {
		switch {
		case errors.Is(err, proposals.ErrProposalNotFound):
			h.logger.Warn("POST /proposals/{id}/%s - Proposal not found: proposal_id=%d", h.action, proposalID)
			handlers.RespondNotFound(w, msgNotFound)

		case handlers.RespondDomainError(w, err):
			h.logger.Warn("POST /proposals/{id}/%s - Rejected: proposal_id=%d, error=%v", h.action, proposalID, err)

		default:
			h.logger.Error("POST /proposals/{id}/%s - Failed: proposal_id=%d, error=%v", h.action, proposalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /proposals/{id}/%s - Proposal is %s: proposal_id=%d", h.action, result.Status, proposalID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) apply(ctx context.Context, id int64) (*models.ProposalResponse, error) {
	switch h.action {
	case ActionView:
		return h.service.MarkViewed(ctx, id)
	case ActionExpire:
		return h.service.Expire(ctx, id)
	default:
		return h.service.Send(ctx, id)
	}
}
