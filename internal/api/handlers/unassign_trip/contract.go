package unassign_trip

import (
	"context"

	assignTrip "github.com/m04kA/SMC-TourService/internal/usecase/assign_trip"
)

type UnassignUseCase interface {
	Unassign(ctx context.Context, req *assignTrip.UnassignRequest) (*assignTrip.UnassignResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
