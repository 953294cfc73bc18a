package assign_trip

import (
	"context"

	assignTrip "github.com/m04kA/SMC-TourService/internal/usecase/assign_trip"
)

type AssignUseCase interface {
	Assign(ctx context.Context, req *assignTrip.AssignRequest) (*assignTrip.AssignResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
