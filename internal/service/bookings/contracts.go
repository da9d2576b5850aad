package bookings

import (
	"context"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/notifier"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/payments"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, from []domain.BookingStatus, reason string, at time.Time) error
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id int64, statuses []domain.BookingStatus) error
}

// CarRepository интерфейс репозитория автомобилей
type CarRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
}

// PaymentRepository интерфейс репозитория оплат
type PaymentRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	UpsertPending(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	MarkSucceeded(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	MarkFailed(ctx context.Context, bookingID int64) error
	MarkRefunded(ctx context.Context, bookingID int64, refundID string) error
}

// VerificationRepository интерфейс репозитория токенов подтверждения
type VerificationRepository interface {
	Upsert(ctx context.Context, v *domain.BookingVerification) (*domain.BookingVerification, error)
	GetByToken(ctx context.Context, token string) (*domain.BookingVerification, error)
	MarkVerified(ctx context.Context, bookingID int64, at time.Time) (bool, error)
	RecordDocumentAttempt(ctx context.Context, bookingID int64, at time.Time) error
}

// AvailabilityChecker проверка пересечений с активными бронированиями
type AvailabilityChecker interface {
	CheckAvailable(ctx context.Context, carID int64, window domain.Window, excludeID *int64) error
}

// PaymentGateway интерфейс платежного провайдера
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req payments.CheckoutRequest) (*payments.Checkout, error)
	Refund(ctx context.Context, bookingID int64, externalPaymentID string) (string, error)
}

// Notifier публикация уведомлений
type Notifier interface {
	Publish(ctx context.Context, msg notifier.Message) error
}

// CarLocker распределенная блокировка автомобиля на время записи
type CarLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransitionRecorder учет переходов статусов в метриках
type TransitionRecorder interface {
	IncTransition(from, to string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
