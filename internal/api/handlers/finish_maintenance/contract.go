package finish_maintenance

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

type CarService interface {
	FinishMaintenance(ctx context.Context, actor domain.Actor, carID int64) (*domain.Car, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
