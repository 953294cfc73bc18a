package create_proposal

import (
	"context"

	createProposal "github.com/m04kA/SMC-TourService/internal/usecase/create_proposal"
)

type CreateProposalUseCase interface {
	Execute(ctx context.Context, req *createProposal.Request) (*createProposal.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
