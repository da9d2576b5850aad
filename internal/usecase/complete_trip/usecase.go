package complete_trip

import (
	"context"
	"errors"
	"fmt"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/ptr"
)

// UseCase возврат автомобиля: бронирование -> COMPLETED и автомобиль -> MAINTENANCE одной транзакцией
type UseCase struct {
	bookingRepo BookingRepository
	carRepo     CarRepository
	txManager   TransactionManager
	transitions TransitionRecorder
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	carRepo CarRepository,
	txManager TransactionManager,
	transitions TransitionRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		carRepo:     carRepo,
		txManager:   txManager,
		transitions: transitions,
		logger:      logger,
	}
}

// Execute выполняет возврат автомобиля
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CompleteTrip: booking=%d, staff=%d, odometer=%d", req.BookingID, req.Actor.UserID, req.EndOdometer)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CompleteTrip: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бронирование
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("CompleteTrip: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("CompleteTrip: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.Status != domain.StatusOngoing {
		uc.logger.Warn("CompleteTrip: booking id=%d has status=%s", req.BookingID, booking.Status)
		return nil, ErrInvalidStatus
	}

	if booking.StartOdometer != nil && req.EndOdometer < *booking.StartOdometer {
		uc.logger.Warn("CompleteTrip: booking id=%d end odometer %d < start odometer %d",
			req.BookingID, req.EndOdometer, *booking.StartOdometer)
		return nil, ErrOdometerRollback
	}

	// 3. Бронирование и автомобиль меняются вместе
	completion := bookingRepo.TripCompletion{
		EndOdometer: req.EndOdometer,
		DamageFee:   req.DamageFee,
		ExtraKmFee:  req.ExtraKmFee,
	}
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.CompleteTrip(txCtx, req.BookingID, completion); err != nil {
			return err
		}
		return uc.carRepo.UpdateStatus(txCtx, booking.CarID, []domain.CarStatus{domain.CarRented}, domain.CarMaintenance)
	})
	if err != nil {
		uc.logger.Error("CompleteTrip: transaction rolled back for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: complete trip transaction: %v", ErrInternal, err)
	}

	booking.Status = domain.StatusCompleted
	booking.EndOdometer = ptr.Ptr(req.EndOdometer)
	booking.DamageFee = req.DamageFee
	booking.ExtraKmFee = req.ExtraKmFee
	if uc.transitions != nil {
		uc.transitions.IncTransition(string(domain.StatusOngoing), string(domain.StatusCompleted))
	}

	uc.logger.Info("CompleteTrip: booking id=%d completed, car id=%d sent to maintenance", req.BookingID, booking.CarID)
	return &Response{Booking: booking, CarStatus: domain.CarMaintenance}, nil
}
