package expire_bookings

import (
	"context"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/notifier"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListPendingCreatedBefore(ctx context.Context, createdBefore time.Time, limit uint64) ([]bookingRepo.PendingCandidate, error)
	CancelMany(ctx context.Context, ids []int64, from domain.BookingStatus, reason string, at time.Time) ([]int64, error)
	CancelUnpaidVerified(ctx context.Context, ttl time.Duration, reason string, at time.Time, limit uint64) ([]int64, error)
	DeleteDraftsCreatedBefore(ctx context.Context, createdBefore time.Time) (int64, error)
}

// PaymentRepository интерфейс репозитория оплат
type PaymentRepository interface {
	ListRefundable(ctx context.Context, updatedBefore time.Time, limit uint64) ([]*domain.Payment, error)
	MarkRefunded(ctx context.Context, bookingID int64, refundID string) error
}

// PaymentGateway интерфейс платежного шлюза
type PaymentGateway interface {
	Refund(ctx context.Context, bookingID int64, externalPaymentID string) (string, error)
}

// Notifier интерфейс отправки уведомлений
type Notifier interface {
	Publish(ctx context.Context, msg notifier.Message) error
}

// Metrics метрики проходов и переходов статусов
type Metrics interface {
	ObserveSweep(sweep string, affected int, duration time.Duration, err error)
	IncTransition(from, to string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реализация TimeProvider с реальным временем
type RealTimeProvider struct{}

// Now возвращает текущее время
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}
