package complete_trip

import (
	"context"

	completeTrip "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/complete_trip"
)

type CompleteTripUseCase interface {
	Execute(ctx context.Context, req *completeTrip.Request) (*completeTrip.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
