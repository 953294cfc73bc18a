package find_availability

import (
	"net/http"

	"github.com/m04kA/SMC-TourService/internal/api/handlers"
	"github.com/m04kA/SMC-TourService/internal/domain"
)

const (
	msgInvalidQuery = "некорректные параметры: ожидаются date=YYYY-MM-DD, startTime=HH:MM, durationMinutes, partySize"
)

type Handler struct {
	useCase FindAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase FindAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
// Query params: date, startTime, durationMinutes, partySize (обязательные), excludeBookingId
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	useCaseReq, err := ToUseCaseRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /availability - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("GET /availability - Rejected: %v", err)
			return
		}
		h.logger.Error("GET /availability - Failed to resolve availability: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /availability - Resolved: date=%s, drivers=%d, vehicles=%d",
		useCaseReq.Date.Format(domain.DateFormat), len(result.Drivers), len(result.Vehicles))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
