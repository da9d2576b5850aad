package start_trip

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	StartTrip(ctx context.Context, id int64, startOdometer int64) error
}

// CarRepository интерфейс репозитория автомобилей
type CarRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
	UpdateStatus(ctx context.Context, id int64, from []domain.CarStatus, to domain.CarStatus) error
}

// PaymentRepository интерфейс репозитория оплат
type PaymentRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
}

// DocumentsClient интерфейс клиента сервиса проверки документов
type DocumentsClient interface {
	GetUserStatus(ctx context.Context, userID int64) (domain.DocumentStatus, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransitionRecorder учет переходов статусов в метриках
type TransitionRecorder interface {
	IncTransition(from, to string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
