package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
)

// Service детектор конфликтов бронирований
// Единственный источник решения о доступности автомобиля на интервал
type Service struct {
	bookingRepo BookingRepository
	carRepo     CarRepository
	buffer      time.Duration
	logger      Logger
}

// NewService создает детектор. buffer - запас на обслуживание вокруг активных
// бронирований, применяется только при выдаче каталога
func NewService(bookingRepo BookingRepository, carRepo CarRepository, buffer time.Duration, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		carRepo:     carRepo,
		buffer:      buffer,
		logger:      logger,
	}
}

// FindConflicts возвращает активные бронирования автомобиля, пересекающиеся с интервалом
// excludeID позволяет не учитывать само переносимое бронирование
func (s *Service) FindConflicts(ctx context.Context, carID int64, window domain.Window, excludeID *int64) ([]*domain.Booking, error) {
	conflicts, err := s.bookingRepo.FindOverlapping(ctx, bookingRepo.OverlapFilter{
		CarID:     &carID,
		Window:    window,
		Statuses:  domain.ActiveStatuses,
		ExcludeID: excludeID,
	})
	if err != nil {
		s.logger.Error("FindConflicts: failed to query bookings for car id=%d: %v", carID, err)
		return nil, fmt.Errorf("%w: FindConflicts - repository error: %v", ErrInternal, err)
	}

	return conflicts, nil
}

// CheckAvailable возвращает *ConflictError, если автомобиль занят на интервал
func (s *Service) CheckAvailable(ctx context.Context, carID int64, window domain.Window, excludeID *int64) error {
	conflicts, err := s.FindConflicts(ctx, carID, window, excludeID)
	if err != nil {
		return err
	}

	if len(conflicts) > 0 {
		s.logger.Warn("CheckAvailable: car id=%d has %d conflicting bookings for %s - %s",
			carID, len(conflicts), window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
		return &ConflictError{Conflicts: conflicts}
	}

	return nil
}

// ListAvailableCars возвращает автомобили, свободные на интервал с учетом буфера
func (s *Service) ListAvailableCars(ctx context.Context, window domain.Window) ([]*domain.Car, error) {
	if window.Start.IsZero() || window.End.IsZero() || !window.Start.Before(window.End) {
		return nil, ErrInvalidWindow
	}

	cars, err := s.carRepo.ListBookable(ctx)
	if err != nil {
		s.logger.Error("ListAvailableCars: failed to list cars: %v", err)
		return nil, fmt.Errorf("%w: ListAvailableCars - car repository error: %v", ErrInternal, err)
	}

	// расширение запрашиваемого интервала на буфер эквивалентно расширению каждого бронирования
	busy, err := s.bookingRepo.FindOverlapping(ctx, bookingRepo.OverlapFilter{
		Window:   window.Expand(s.buffer),
		Statuses: domain.ActiveStatuses,
	})
	if err != nil {
		s.logger.Error("ListAvailableCars: failed to query bookings: %v", err)
		return nil, fmt.Errorf("%w: ListAvailableCars - booking repository error: %v", ErrInternal, err)
	}

	blocked := make(map[int64]struct{}, len(busy))
	for _, b := range busy {
		blocked[b.CarID] = struct{}{}
	}

	available := make([]*domain.Car, 0, len(cars))
	for _, car := range cars {
		if _, ok := blocked[car.ID]; !ok {
			available = append(available, car)
		}
	}

	s.logger.Info("ListAvailableCars: %d of %d cars available", len(available), len(cars))
	return available, nil
}
