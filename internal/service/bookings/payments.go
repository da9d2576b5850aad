package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	paymentRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/payment"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/payments"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
)

// errNoExternalPayment оплата на стойке, автоматический возврат невозможен
var errNoExternalPayment = errors.New("payment has no external payment id")

// CreateCheckout создает платежную сессию для PENDING или VERIFIED бронирования
func (s *Service) CreateCheckout(ctx context.Context, actor domain.Actor, bookingID int64) (*models.CheckoutResponse, error) {
	// 1. Получаем бронирование и проверяем права
	booking, err := s.getBooking(ctx, "CreateCheckout", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkAccess(booking, actor); err != nil {
		s.logger.Warn("CreateCheckout: user=%d has no access to booking id=%d", actor.UserID, bookingID)
		return nil, err
	}

	if booking.Status != domain.StatusPending && booking.Status != domain.StatusVerified {
		s.logger.Warn("CreateCheckout: booking id=%d has status=%s", bookingID, booking.Status)
		return nil, ErrPaymentNotAllowed
	}

	// 2. Повторная оплата не допускается
	existing, err := s.getPayment(ctx, "CreateCheckout", bookingID)
	if err != nil {
		return nil, err
	}
	if existing.IsSucceeded() {
		s.logger.Warn("CreateCheckout: booking id=%d is already paid", bookingID)
		return nil, ErrPaymentAlreadySucceeded
	}

	// 3. Сессия у провайдера
	checkout, err := s.gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		BookingID:   bookingID,
		Amount:      booking.TotalPrice,
		Description: fmt.Sprintf("Car rental booking #%d", bookingID),
		Email:       guestEmail(booking),
	})
	if err != nil {
		s.logger.Error("CreateCheckout: gateway error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: CreateCheckout - gateway error: %v", ErrInternal, err)
	}

	// 4. Сохраняем ожидающую оплату
	_, err = s.paymentRepo.UpsertPending(ctx, &domain.Payment{
		BookingID:         bookingID,
		Amount:            booking.TotalPrice,
		Currency:          s.settings.Currency,
		Method:            domain.PaymentMethodOnline,
		ExternalSessionID: &checkout.ExternalSessionID,
	})
	if err != nil {
		if errors.Is(err, paymentRepo.ErrAlreadySucceeded) {
			s.logger.Warn("CreateCheckout: booking id=%d was paid concurrently", bookingID)
			return nil, ErrPaymentAlreadySucceeded
		}
		s.logger.Error("CreateCheckout: failed to save payment for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: CreateCheckout - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateCheckout: created session for booking id=%d", bookingID)
	return &models.CheckoutResponse{
		RedirectURL: checkout.RedirectURL,
		SessionID:   checkout.ExternalSessionID,
	}, nil
}

// PayConfirm фиксирует успешную оплату
// VERIFIED -> CONFIRMED; для PENDING оплата только записывается, бронирование подтвердит проверка документов
func (s *Service) PayConfirm(ctx context.Context, n models.PaymentNotification) (*models.BookingResponse, error) {
	var (
		booking   *domain.Booking
		confirmed bool
	)

	if n.Method == "" {
		n.Method = domain.PaymentMethodOnline
	}
	if n.Currency == "" {
		n.Currency = s.settings.Currency
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.bookingRepo.GetByID(ctx, n.BookingID)
		if err != nil {
			return err
		}
		booking = current

		if current.Status == domain.StatusDraft {
			return ErrPaymentNotAllowed
		}

		_, err = s.paymentRepo.MarkSucceeded(ctx, &domain.Payment{
			BookingID:         n.BookingID,
			Amount:            n.Amount,
			Currency:          n.Currency,
			Method:            n.Method,
			ExternalSessionID: n.ExternalSessionID,
			ExternalPaymentID: n.ExternalPaymentID,
		})
		if err != nil {
			if errors.Is(err, paymentRepo.ErrAlreadySucceeded) {
				return ErrPaymentAlreadySucceeded
			}
			return err
		}

		switch current.Status {
		case domain.StatusVerified:
			if err := s.bookingRepo.UpdateStatus(ctx, n.BookingID,
				[]domain.BookingStatus{domain.StatusVerified}, domain.StatusConfirmed); err != nil {
				return err
			}
			confirmed = true
		case domain.StatusPending:
		case domain.StatusCancelled, domain.StatusRejected, domain.StatusExpired:
			// деньги списаны после отмены, оплату вернет сверка планировщика
			s.logger.Warn("PayConfirm: payment received for %s booking id=%d, refund will be reconciled", current.Status, n.BookingID)
		default:
			return ErrPaymentNotAllowed
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPaymentAlreadySucceeded) {
			s.logger.Warn("PayConfirm: duplicate payment notification for booking id=%d", n.BookingID)
		}
		return nil, s.mapWriteError("PayConfirm", n.BookingID, err)
	}

	if confirmed {
		s.recordTransition(domain.StatusVerified, domain.StatusConfirmed)
		booking.Status = domain.StatusConfirmed
		booking.UpdatedAt = s.timeProvider.Now()
	}

	s.logger.Info("PayConfirm: recorded %s payment for booking id=%d, status=%s", n.Method, n.BookingID, booking.Status)
	return models.FromDomainBooking(booking), nil
}

// RecordCounterPayment оплата на стойке выдачи, только сотрудник
func (s *Service) RecordCounterPayment(ctx context.Context, actor domain.Actor, bookingID int64) (*models.BookingResponse, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("RecordCounterPayment: user=%d is not an admin", actor.UserID)
		return nil, ErrAccessDenied
	}

	booking, err := s.getBooking(ctx, "RecordCounterPayment", bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.StatusPending && booking.Status != domain.StatusVerified {
		s.logger.Warn("RecordCounterPayment: booking id=%d has status=%s", bookingID, booking.Status)
		return nil, ErrPaymentNotAllowed
	}

	return s.PayConfirm(ctx, models.PaymentNotification{
		BookingID: bookingID,
		Amount:    booking.TotalPrice,
		Currency:  s.settings.Currency,
		Method:    domain.PaymentMethodCounter,
	})
}

// MarkPaymentFailed отмечает неудачную оплату. Статус бронирования не меняется
func (s *Service) MarkPaymentFailed(ctx context.Context, bookingID int64) error {
	err := s.paymentRepo.MarkFailed(ctx, bookingID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrStatusMismatch) {
			s.logger.Info("MarkPaymentFailed: booking id=%d has no pending payment", bookingID)
			return nil
		}
		s.logger.Error("MarkPaymentFailed: failed to update payment for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: MarkPaymentFailed - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("MarkPaymentFailed: payment for booking id=%d marked failed", bookingID)
	return nil
}

// Reject отклоняет бронирование после отказа в документах: PENDING | VERIFIED -> REJECTED
// Ошибка возврата не блокирует отклонение, оплату вернет сверка
func (s *Service) Reject(ctx context.Context, bookingID int64, reason string) (*models.CancelResult, error) {
	booking, err := s.getBooking(ctx, "Reject", bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.StatusRejected {
		s.logger.Info("Reject: booking id=%d already rejected", bookingID)
		return &models.CancelResult{Booking: *models.FromDomainBooking(booking), Refund: models.RefundNone}, nil
	}
	if booking.Status != domain.StatusPending && booking.Status != domain.StatusVerified {
		s.logger.Warn("Reject: booking id=%d has status=%s", bookingID, booking.Status)
		return nil, ErrInvalidTransition
	}

	payment, err := s.getPayment(ctx, "Reject", bookingID)
	if err != nil {
		return nil, err
	}

	// 1. Возврат до смены статуса
	outcome, refundID := s.tryRefund(ctx, "Reject", payment)

	// 2. Фиксируем отклонение
	from := booking.Status
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID,
			[]domain.BookingStatus{domain.StatusPending, domain.StatusVerified}, domain.StatusRejected); err != nil {
			return err
		}
		if outcome == models.RefundDone {
			return s.paymentRepo.MarkRefunded(ctx, bookingID, refundID)
		}
		return nil
	})
	if err != nil {
		return nil, s.mapWriteError("Reject", bookingID, err)
	}

	booking.Status = domain.StatusRejected
	booking.UpdatedAt = s.timeProvider.Now()
	s.recordTransition(from, domain.StatusRejected)

	s.notify(ctx, "Reject", bookingCancelledMessage(booking, reason))

	s.logger.Info("Reject: booking id=%d rejected, refund=%s", bookingID, outcome)
	return &models.CancelResult{Booking: *models.FromDomainBooking(booking), Refund: outcome}, nil
}

// getPayment возвращает оплату бронирования или nil, если ее нет
func (s *Service) getPayment(ctx context.Context, op string, bookingID int64) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			return nil, nil
		}
		s.logger.Error("%s: failed to get payment for booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - payment repository error: %v", ErrInternal, op, err)
	}
	return payment, nil
}

// tryRefund возвращает успешную оплату и исход возврата
func (s *Service) tryRefund(ctx context.Context, op string, payment *domain.Payment) (string, string) {
	if !payment.IsSucceeded() {
		return models.RefundNone, ""
	}

	refundID, err := s.refund(ctx, payment)
	switch {
	case errors.Is(err, errNoExternalPayment):
		s.logger.Info("%s: booking id=%d was paid at the counter, refund is manual", op, payment.BookingID)
		return models.RefundManual, ""
	case err != nil:
		s.logger.Error("%s: refund failed for booking id=%d: %v", op, payment.BookingID, err)
		return models.RefundPending, ""
	default:
		return models.RefundDone, refundID
	}
}

func (s *Service) refund(ctx context.Context, payment *domain.Payment) (string, error) {
	if payment.ExternalPaymentID == nil || *payment.ExternalPaymentID == "" {
		return "", errNoExternalPayment
	}
	return s.gateway.Refund(ctx, payment.BookingID, *payment.ExternalPaymentID)
}
