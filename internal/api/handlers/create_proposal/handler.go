package create_proposal

import (
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/api/middleware"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
)

type Handler struct {
	useCase CreateProposalUseCase
	logger  Logger
}

func NewHandler(useCase CreateProposalUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/proposals
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateProposalRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /proposals - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /proposals - Failed to parse request: %v", err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /proposals - Rejected: user_id=%d, customer=%s, error=%v", userID, req.CustomerEmail, err)
			return
		}
		h.logger.Error("POST /proposals - Failed to create proposal: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /proposals - Proposal created: proposal_id=%d, number=%s, user_id=%d",
		result.Proposal.ID, result.Proposal.ProposalNumber, userID)
	handlers.RespondJSON(w, http.StatusCreated, &CreateProposalResponse{
		ProposalResponse: result.Proposal,
		Warnings:         result.Warnings,
	})
}
