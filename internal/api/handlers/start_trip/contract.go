package start_trip

import (
	"context"

	startTrip "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/start_trip"
)

type StartTripUseCase interface {
	Execute(ctx context.Context, req *startTrip.Request) (*startTrip.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
