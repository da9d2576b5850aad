package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	paymentRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/payment"
	verificationRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/verification"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
)

// VerifyByToken подтверждает бронирование по ссылке из письма
// Повторный переход по ссылке возвращает текущее состояние без изменений
func (s *Service) VerifyByToken(ctx context.Context, token string) (*models.BookingResponse, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}

	verification, err := s.verificationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, verificationRepo.ErrVerificationNotFound) {
			s.logger.Warn("VerifyByToken: unknown token")
			return nil, ErrTokenNotFound
		}
		s.logger.Error("VerifyByToken: failed to get verification: %v", err)
		return nil, fmt.Errorf("%w: VerifyByToken - repository error: %v", ErrInternal, err)
	}

	if !verification.IsVerified && verification.IsExpired(s.timeProvider.Now()) {
		s.logger.Warn("VerifyByToken: token for booking id=%d expired at %s", verification.BookingID, verification.ExpiresAt)
		return nil, ErrTokenExpired
	}

	booking, err := s.verify(ctx, "VerifyByToken", verification.BookingID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(booking), nil
}

// VerifyByDocuments подтверждает бронирование после одобрения документов
func (s *Service) VerifyByDocuments(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	booking, err := s.verify(ctx, "VerifyByDocuments", bookingID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(booking), nil
}

// RecordDocumentAttempt отмечает начало загрузки документов, продлевая срок PENDING на льготный период
func (s *Service) RecordDocumentAttempt(ctx context.Context, bookingID int64) error {
	booking, err := s.getBooking(ctx, "RecordDocumentAttempt", bookingID)
	if err != nil {
		return err
	}

	if booking.Status != domain.StatusPending {
		s.logger.Info("RecordDocumentAttempt: booking id=%d has status=%s, attempt ignored", bookingID, booking.Status)
		return nil
	}

	if err := s.verificationRepo.RecordDocumentAttempt(ctx, bookingID, s.timeProvider.Now()); err != nil {
		if errors.Is(err, verificationRepo.ErrVerificationNotFound) {
			s.logger.Warn("RecordDocumentAttempt: booking id=%d has no verification", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("RecordDocumentAttempt: failed to record attempt for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: RecordDocumentAttempt - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("RecordDocumentAttempt: recorded document attempt for booking id=%d", bookingID)
	return nil
}

// verify PENDING -> VERIFIED, и сразу CONFIRMED, если оплата уже прошла
// Для уже подтвержденных бронирований ничего не меняет
func (s *Service) verify(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	var (
		booking     *domain.Booking
		transitions []domain.BookingStatus
	)

	now := s.timeProvider.Now()
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		booking = current

		switch current.Status {
		case domain.StatusVerified, domain.StatusConfirmed, domain.StatusOngoing, domain.StatusCompleted:
			return nil
		case domain.StatusPending:
		default:
			return ErrInvalidTransition
		}

		if _, err := s.verificationRepo.MarkVerified(ctx, bookingID, now); err != nil &&
			!errors.Is(err, verificationRepo.ErrVerificationNotFound) {
			return err
		}

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID,
			[]domain.BookingStatus{domain.StatusPending}, domain.StatusVerified); err != nil {
			return err
		}
		transitions = append(transitions, domain.StatusPending, domain.StatusVerified)

		payment, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
		if err != nil && !errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			return err
		}
		if payment.IsSucceeded() {
			if err := s.bookingRepo.UpdateStatus(ctx, bookingID,
				[]domain.BookingStatus{domain.StatusVerified}, domain.StatusConfirmed); err != nil {
				return err
			}
			transitions = append(transitions, domain.StatusConfirmed)
		}
		return nil
	})
	if err != nil {
		return nil, s.mapWriteError(op, bookingID, err)
	}

	if len(transitions) == 0 {
		s.logger.Info("%s: booking id=%d already verified, status=%s", op, bookingID, booking.Status)
		return booking, nil
	}

	for i := 1; i < len(transitions); i++ {
		s.recordTransition(transitions[i-1], transitions[i])
	}
	booking.Status = transitions[len(transitions)-1]
	booking.UpdatedAt = now

	s.logger.Info("%s: booking id=%d verified, status=%s", op, bookingID, booking.Status)
	return booking, nil
}
