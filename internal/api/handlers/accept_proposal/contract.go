package accept_proposal

import (
	"context"

	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
)

type ProposalService interface {
	Accept(ctx context.Context, id int64) (*models.AcceptResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
