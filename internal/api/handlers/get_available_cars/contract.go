package get_available_cars

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

type AvailabilityService interface {
	ListAvailableCars(ctx context.Context, window domain.Window) ([]*domain.Car, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
