package delete_booking

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

type BookingService interface {
	Delete(ctx context.Context, actor domain.Actor, bookingID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
