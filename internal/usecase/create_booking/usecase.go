package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/redislock"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	carRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/car"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/availability"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	carRepo      CarRepository
	availability AvailabilityChecker
	locker       CarLocker
	txManager    TransactionManager
	timeProvider TimeProvider
	settings     Settings
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// locker может быть nil: тогда конкурентные записи разрешает только база
func NewUseCase(
	bookingRepo BookingRepository,
	carRepo CarRepository,
	availability AvailabilityChecker,
	locker CarLocker,
	txManager TransactionManager,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		carRepo:      carRepo,
		availability: availability,
		locker:       locker,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		settings:     settings,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования в статусе DRAFT
// Запись выполняется под блокировкой автомобиля в сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, car=%d, start=%s, end=%s",
		req.Actor.UserID, req.CarID, req.StartDate.Format(time.RFC3339), req.EndDate.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	subject, err := resolveSubject(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: user=%d cannot book for this subject: %v", req.Actor.UserID, err)
		return nil, err
	}

	// 2. Проверяем интервал. Клиент walk-in забирает автомобиль сразу, запас времени не нужен
	now := uc.timeProvider.Now()
	window := domain.Window{Start: req.StartDate, End: req.EndDate}

	leadTime := uc.settings.MinLeadTime
	if req.Guest != nil {
		leadTime = 0
	}
	if err := domain.ValidateWindow(window, now, leadTime); err != nil {
		uc.logger.Warn("CreateBooking: invalid window: %v", err)
		return nil, err
	}

	// 3. Проверяем автомобиль
	car, err := uc.getCar(ctx, req.CarID)
	if err != nil {
		return nil, err
	}

	// 4. Считаем стоимость
	quote := domain.QuoteRental(window, car.PricePerDay, uc.settings.TaxRate, uc.settings.DepositAmount, req.Kind)

	booking := &domain.Booking{
		Subject:        subject,
		CarID:          req.CarID,
		Kind:           req.Kind,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		PickupTime:     req.PickupTime,
		ReturnTime:     req.ReturnTime,
		Status:         domain.StatusDraft,
		CreatedByStaff: req.Actor.IsAdmin(),
		IsWalkIn:       req.Guest != nil,
	}
	quote.Apply(booking)

	// 5. Под блокировкой автомобиля проверяем пересечения и создаем черновик
	var result *domain.Booking
	err = uc.withCarLock(ctx, req.CarID, func(ctx context.Context) error {
		return uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			// 5.1. Блокируем строку автомобиля (FOR UPDATE)
			if _, err := uc.carRepo.GetByID(txCtx, req.CarID); err != nil {
				return err
			}

			// 5.2. Проверяем пересечения с активными бронированиями
			if err := uc.availability.CheckAvailable(txCtx, req.CarID, window, nil); err != nil {
				return err
			}

			// 5.3. Создаем бронирование
			created, err := uc.bookingRepo.Create(txCtx, booking)
			if err != nil {
				return err
			}
			result = created
			return nil
		})
	})
	if err != nil {
		return nil, uc.mapWriteError(req.CarID, err)
	}

	uc.logger.Info("CreateBooking: created booking id=%d for car=%d, days=%d, total=%.2f",
		result.ID, result.CarID, quote.Days, result.TotalPrice)

	return &Response{Booking: result, Days: quote.Days}, nil
}

func (uc *UseCase) getCar(ctx context.Context, carID int64) (*domain.Car, error) {
	car, err := uc.carRepo.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, carRepo.ErrCarNotFound) {
			uc.logger.Warn("CreateBooking: car id=%d not found", carID)
			return nil, ErrCarNotFound
		}
		uc.logger.Error("CreateBooking: failed to get car id=%d: %v", carID, err)
		return nil, fmt.Errorf("%w: failed to get car: %v", ErrInternal, err)
	}

	if !car.IsBookable() {
		uc.logger.Warn("CreateBooking: car id=%d has status=%s", carID, car.Status)
		return nil, ErrCarOutOfService
	}
	return car, nil
}

func (uc *UseCase) withCarLock(ctx context.Context, carID int64, fn func(ctx context.Context) error) error {
	if uc.locker == nil {
		return fn(ctx)
	}
	return uc.locker.WithLock(ctx, strconv.FormatInt(carID, 10), fn)
}

func (uc *UseCase) mapWriteError(carID int64, err error) error {
	var conflict *availability.ConflictError
	switch {
	case errors.As(err, &conflict):
		return err
	case errors.Is(err, redislock.ErrLockHeld):
		uc.logger.Warn("CreateBooking: car id=%d is locked by another request", carID)
		return ErrCarBusy
	case errors.Is(err, bookingRepo.ErrOverlap):
		uc.logger.Warn("CreateBooking: car id=%d overlap rejected by database", carID)
		return availability.ErrBookingConflict
	case errors.Is(err, txmanager.ErrSerialization):
		uc.logger.Warn("CreateBooking: serialization failure for car id=%d", carID)
		return ErrCarBusy
	case errors.Is(err, carRepo.ErrCarNotFound):
		return ErrCarNotFound
	default:
		uc.logger.Error("CreateBooking: failed to create booking for car id=%d: %v", carID, err)
		return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}
}
