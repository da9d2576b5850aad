package bookings

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/notifier"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/ptr"
)

// Confirm подтверждает черновик: DRAFT -> PENDING и выпуск токена подтверждения
// Черновик walk-in подтверждает сотрудник, документы проверены на месте: DRAFT -> VERIFIED
func (s *Service) Confirm(ctx context.Context, actor domain.Actor, bookingID int64) (*models.ConfirmResponse, error) {
	// 1. Получаем бронирование и проверяем права
	booking, err := s.getBooking(ctx, "Confirm", bookingID)
	if err != nil {
		return nil, err
	}

	if booking.IsWalkIn {
		if !actor.IsAdmin() {
			s.logger.Warn("Confirm: user=%d cannot confirm walk-in booking id=%d", actor.UserID, bookingID)
			return nil, ErrAccessDenied
		}
	} else if !booking.IsOwnedBy(actor.UserID) {
		s.logger.Warn("Confirm: user=%d is not the owner of booking id=%d", actor.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	if booking.Status != domain.StatusDraft {
		s.logger.Warn("Confirm: booking id=%d has status=%s", bookingID, booking.Status)
		return nil, ErrInvalidTransition
	}

	target := domain.StatusPending
	if booking.IsWalkIn {
		target = domain.StatusVerified
	}

	now := s.timeProvider.Now()
	verification := &domain.BookingVerification{
		BookingID: bookingID,
		Token:     s.newToken(),
		ExpiresAt: now.Add(s.settings.VerificationTTL),
	}
	if booking.IsWalkIn {
		verification.IsVerified = true
		verification.VerifiedAt = &now
	}

	// 2. Под блокировкой автомобиля перепроверяем пересечения и меняем статус
	// DRAFT не удерживает автомобиль, поэтому за время черновика интервал мог быть занят
	err = s.withCarLock(ctx, booking.CarID, func(ctx context.Context) error {
		return s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
			if _, err := s.lockCar(ctx, booking.CarID); err != nil {
				return err
			}

			current, err := s.bookingRepo.GetByID(ctx, bookingID)
			if err != nil {
				return err
			}
			if current.Status != domain.StatusDraft {
				return ErrInvalidTransition
			}

			if err := s.availability.CheckAvailable(ctx, current.CarID, current.Window(), &current.ID); err != nil {
				return err
			}

			if err := s.bookingRepo.UpdateStatus(ctx, bookingID, []domain.BookingStatus{domain.StatusDraft}, target); err != nil {
				return err
			}

			if _, err := s.verificationRepo.Upsert(ctx, verification); err != nil {
				return err
			}

			booking = current
			return nil
		})
	})
	if err != nil {
		return nil, s.mapWriteError("Confirm", bookingID, err)
	}

	booking.Status = target
	booking.UpdatedAt = now
	s.recordTransition(domain.StatusDraft, target)

	// 3. Ссылка подтверждения уходит клиенту после фиксации
	if !booking.IsWalkIn {
		s.notify(ctx, "Confirm", notifier.Message{
			Type:      notifier.TypeVerificationLink,
			BookingID: bookingID,
			UserID:    booking.Subject.UserID,
			Token:     verification.Token,
			ExpiresAt: ptr.Ptr(verification.ExpiresAt),
		})
	}

	s.logger.Info("Confirm: booking id=%d moved DRAFT -> %s", bookingID, target)
	return &models.ConfirmResponse{
		Booking:               *models.FromDomainBooking(booking),
		VerificationExpiresAt: verification.ExpiresAt,
	}, nil
}
