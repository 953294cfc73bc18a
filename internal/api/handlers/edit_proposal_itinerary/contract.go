package edit_proposal_itinerary

import (
	"context"

	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
)

type ProposalService interface {
	EditItinerary(ctx context.Context, id int64, req *models.EditItineraryRequest) (*models.EditItineraryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
