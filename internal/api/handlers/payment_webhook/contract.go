package payment_webhook

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/payments"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
)

type BookingService interface {
	PayConfirm(ctx context.Context, n models.PaymentNotification) (*models.BookingResponse, error)
	MarkPaymentFailed(ctx context.Context, bookingID int64) error
}

// EventParser проверка подписи и разбор уведомления шлюза
type EventParser interface {
	ParseEvent(payload []byte, signature string) (*payments.Event, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
