package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/redislock"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	carRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/car"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/notifier"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/availability"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/txmanager"
)

// Settings параметры бизнес-правил бронирования
type Settings struct {
	Currency           string
	TaxRate            float64
	DepositAmount      float64
	VerificationTTL    time.Duration
	CancellationCutoff time.Duration
}

// Service машина состояний бронирования: подтверждение, проверка, оплата, отмена, изменение
type Service struct {
	bookingRepo      BookingRepository
	carRepo          CarRepository
	paymentRepo      PaymentRepository
	verificationRepo VerificationRepository
	availability     AvailabilityChecker
	gateway          PaymentGateway
	notifier         Notifier
	locker           CarLocker
	txManager        TransactionManager
	transitions      TransitionRecorder
	timeProvider     TimeProvider
	newToken         func() string
	settings         Settings
	logger           Logger
}

// NewService создает новый экземпляр сервиса бронирований
// locker может быть nil: тогда конкурентные записи разрешает только база
func NewService(
	bookingRepo BookingRepository,
	carRepo CarRepository,
	paymentRepo PaymentRepository,
	verificationRepo VerificationRepository,
	availability AvailabilityChecker,
	gateway PaymentGateway,
	notifier Notifier,
	locker CarLocker,
	txManager TransactionManager,
	transitions TransitionRecorder,
	settings Settings,
	logger Logger,
) *Service {
	if settings.VerificationTTL <= 0 {
		settings.VerificationTTL = domain.VerificationTokenTTL
	}
	if settings.CancellationCutoff <= 0 {
		settings.CancellationCutoff = domain.CancellationCutoff
	}

	return &Service{
		bookingRepo:      bookingRepo,
		carRepo:          carRepo,
		paymentRepo:      paymentRepo,
		verificationRepo: verificationRepo,
		availability:     availability,
		gateway:          gateway,
		notifier:         notifier,
		locker:           locker,
		txManager:        txManager,
		transitions:      transitions,
		timeProvider:     &RealTimeProvider{},
		newToken:         uuid.NewString,
		settings:         settings,
		logger:           logger,
	}
}

// GetByID получает бронирование по ID с проверкой прав доступа
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, bookingID int64) (*models.BookingResponse, error) {
	booking, err := s.getBooking(ctx, "GetByID", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkAccess(booking, actor); err != nil {
		s.logger.Warn("GetByID: user=%d has no access to booking id=%d", actor.UserID, bookingID)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает бронирования текущего пользователя
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	var status *domain.BookingStatus
	if req.Status != nil {
		parsed, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s", *req.Status)
			return nil, ErrInvalidInput
		}
		status = &parsed
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.Actor.UserID, status)
	if err != nil {
		s.logger.Error("GetUserBookings: failed to get bookings for user=%d: %v", req.Actor.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: found %d bookings for user=%d", len(bookings), req.Actor.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: failed to get booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkAccess владелец или администратор
func (s *Service) checkAccess(booking *domain.Booking, actor domain.Actor) error {
	if actor.IsAdmin() || booking.IsOwnedBy(actor.UserID) {
		return nil
	}
	return ErrAccessDenied
}

// withCarLock сериализует записи по автомобилю между инстансами
func (s *Service) withCarLock(ctx context.Context, carID int64, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}

	err := s.locker.WithLock(ctx, strconv.FormatInt(carID, 10), fn)
	if errors.Is(err, redislock.ErrLockHeld) {
		return ErrCarBusy
	}
	return err
}

// lockCar блокирует строку автомобиля до конца транзакции
func (s *Service) lockCar(ctx context.Context, carID int64) (*domain.Car, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if errors.Is(err, carRepo.ErrCarNotFound) {
		return nil, ErrCarNotFound
	}
	return car, err
}

// mapWriteError переводит ошибки записи в ошибки сервиса
func (s *Service) mapWriteError(op string, bookingID int64, err error) error {
	var conflict *availability.ConflictError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &conflict), errors.Is(err, ErrCarBusy), errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrPaymentAlreadySucceeded),
		errors.Is(err, ErrPaymentNotAllowed), errors.Is(err, ErrCannotUpdate), errors.Is(err, ErrCarNotFound):
		return err
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		s.logger.Warn("%s: booking id=%d not found", op, bookingID)
		return ErrBookingNotFound
	case errors.Is(err, bookingRepo.ErrOverlap):
		s.logger.Warn("%s: booking id=%d overlaps an active booking", op, bookingID)
		return availability.ErrBookingConflict
	case errors.Is(err, bookingRepo.ErrStatusMismatch):
		s.logger.Warn("%s: booking id=%d status changed concurrently", op, bookingID)
		return ErrInvalidTransition
	case errors.Is(err, txmanager.ErrSerialization):
		s.logger.Warn("%s: serialization failure for booking id=%d", op, bookingID)
		return ErrCarBusy
	default:
		s.logger.Error("%s: failed to write booking id=%d: %v", op, bookingID, err)
		return fmt.Errorf("%w: %s - %v", ErrInternal, op, err)
	}
}

func (s *Service) recordTransition(from, to domain.BookingStatus) {
	if s.transitions != nil {
		s.transitions.IncTransition(string(from), string(to))
	}
}

// notify публикует уведомление после фиксации. Ошибка доставки не откатывает операцию
func (s *Service) notify(ctx context.Context, op string, msg notifier.Message) {
	if s.notifier == nil {
		return
	}
	msg.OccurredAt = s.timeProvider.Now()
	if err := s.notifier.Publish(ctx, msg); err != nil {
		s.logger.Error("%s: failed to publish %s for booking id=%d: %v", op, msg.Type, msg.BookingID, err)
	}
}

func guestEmail(b *domain.Booking) *string {
	if b.Subject.Guest != nil {
		return b.Subject.Guest.Email
	}
	return nil
}
