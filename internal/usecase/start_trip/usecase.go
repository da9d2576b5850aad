package start_trip

import (
	"context"
	"errors"
	"fmt"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	paymentRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/payment"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/ptr"
)

// UseCase выдача автомобиля: бронирование -> ONGOING и автомобиль -> RENTED одной транзакцией
type UseCase struct {
	bookingRepo BookingRepository
	carRepo     CarRepository
	paymentRepo PaymentRepository
	documents   DocumentsClient
	txManager   TransactionManager
	transitions TransitionRecorder
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	carRepo CarRepository,
	paymentRepo PaymentRepository,
	documents DocumentsClient,
	txManager TransactionManager,
	transitions TransitionRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		carRepo:     carRepo,
		paymentRepo: paymentRepo,
		documents:   documents,
		txManager:   txManager,
		transitions: transitions,
		logger:      logger,
	}
}

// Execute выполняет выдачу автомобиля
// Все проверки выполняются до транзакции; ошибка внутри транзакции откатывает обе записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("StartTrip: booking=%d, staff=%d, odometer=%d", req.BookingID, req.Actor.UserID, req.StartOdometer)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("StartTrip: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бронирование
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("StartTrip: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("StartTrip: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if !booking.Status.CanTransitionTo(domain.StatusOngoing) {
		uc.logger.Warn("StartTrip: booking id=%d has status=%s", req.BookingID, booking.Status)
		return nil, ErrInvalidStatus
	}

	// 3. Оплата должна пройти
	payment, err := uc.paymentRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil && !errors.Is(err, paymentRepo.ErrPaymentNotFound) {
		uc.logger.Error("StartTrip: failed to get payment for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get payment: %v", ErrInternal, err)
	}
	if !payment.IsSucceeded() {
		uc.logger.Warn("StartTrip: booking id=%d is not paid", req.BookingID)
		return nil, ErrPaymentRequired
	}

	// 4. Документы водителя должны быть одобрены
	if requiresDocuments(booking) {
		status, err := uc.documents.GetUserStatus(ctx, *booking.Subject.UserID)
		if err != nil {
			uc.logger.Error("StartTrip: failed to get documents status for user=%d: %v", *booking.Subject.UserID, err)
			return nil, fmt.Errorf("%w: failed to get documents status: %v", ErrInternal, err)
		}
		if status != domain.DocumentsApproved {
			uc.logger.Warn("StartTrip: documents of user=%d are %s", *booking.Subject.UserID, status)
			return nil, ErrDocumentsNotApproved
		}
	}

	// 5. Автомобиль должен быть на месте
	car, err := uc.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		uc.logger.Error("StartTrip: failed to get car id=%d: %v", booking.CarID, err)
		return nil, fmt.Errorf("%w: failed to get car: %v", ErrInternal, err)
	}
	if car.Status != domain.CarAvailable {
		uc.logger.Warn("StartTrip: car id=%d has status=%s", car.ID, car.Status)
		return nil, ErrCarNotReady
	}

	// 6. Бронирование и автомобиль меняются вместе
	from := booking.Status
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.StartTrip(txCtx, req.BookingID, req.StartOdometer); err != nil {
			return err
		}
		return uc.carRepo.UpdateStatus(txCtx, booking.CarID, []domain.CarStatus{domain.CarAvailable}, domain.CarRented)
	})
	if err != nil {
		uc.logger.Error("StartTrip: transaction rolled back for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: start trip transaction: %v", ErrInternal, err)
	}

	booking.Status = domain.StatusOngoing
	booking.StartOdometer = ptr.Ptr(req.StartOdometer)
	if uc.transitions != nil {
		uc.transitions.IncTransition(string(from), string(domain.StatusOngoing))
	}

	uc.logger.Info("StartTrip: booking id=%d is ongoing, car id=%d rented", req.BookingID, booking.CarID)
	return &Response{Booking: booking, CarStatus: domain.CarRented}, nil
}
