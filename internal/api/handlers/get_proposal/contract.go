package get_proposal

import (
	"context"

	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
)

type ProposalService interface {
	Get(ctx context.Context, id int64) (*models.ProposalResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
