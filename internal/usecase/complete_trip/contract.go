package complete_trip

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	CompleteTrip(ctx context.Context, id int64, completion bookingRepo.TripCompletion) error
}

// CarRepository интерфейс репозитория автомобилей
type CarRepository interface {
	UpdateStatus(ctx context.Context, id int64, from []domain.CarStatus, to domain.CarStatus) error
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
