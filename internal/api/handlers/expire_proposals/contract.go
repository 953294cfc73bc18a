package expire_proposals

import (
	"context"

	"github.com/m04kA/SMC-TourService/internal/service/proposals/models"
)

type ProposalService interface {
	ExpireOverdue(ctx context.Context) (*models.ExpireOverdueResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
