package expire_proposals

import (
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
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

// Handle POST /api/v1/proposals/expire-overdue
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ExpireOverdue(r.Context())
	if err != nil {
		h.logger.Error("POST /proposals/expire-overdue - Failed: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /proposals/expire-overdue - Expired: count=%d", result.Expired)
	handlers.RespondJSON(w, http.StatusOK, result)
}
