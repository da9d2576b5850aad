package confirm_booking

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
)

type BookingService interface {
	Confirm(ctx context.Context, actor domain.Actor, bookingID int64) (*models.ConfirmResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
