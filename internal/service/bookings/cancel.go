package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/notifier"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
)

const (
	defaultUserCancelReason  = "cancelled by customer"
	defaultStaffCancelReason = "cancelled by staff"
)

// Cancel отменяет бронирование
// Клиент не может отменить поездку и подтвержденное бронирование менее чем за сутки до выдачи.
// Успешная оплата возвращается до смены статуса: если возврат не прошел, клиентская отмена
// не выполняется, а отмена сотрудником продолжается с отложенным возвратом
func (s *Service) Cancel(ctx context.Context, req *models.CancelBookingRequest) (*models.CancelResult, error) {
	// 1. Получаем бронирование и проверяем права
	booking, err := s.getBooking(ctx, "CancelBooking", req.BookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkAccess(booking, req.Actor); err != nil {
		s.logger.Warn("CancelBooking: user=%d has no access to booking id=%d", req.Actor.UserID, req.BookingID)
		return nil, err
	}

	// 2. Проверяем, можно ли отменить в текущем статусе
	isAdmin := req.Actor.IsAdmin()
	now := s.timeProvider.Now()

	switch booking.Status {
	case domain.StatusCompleted, domain.StatusCancelled, domain.StatusRejected, domain.StatusExpired:
		s.logger.Warn("CancelBooking: booking id=%d has terminal status=%s", req.BookingID, booking.Status)
		return nil, ErrCannotCancel
	case domain.StatusOngoing:
		s.logger.Warn("CancelBooking: booking id=%d is ongoing", req.BookingID)
		if !isAdmin {
			return nil, ErrOngoingCancel
		}
		return nil, ErrCannotCancel
	case domain.StatusConfirmed:
		if !isAdmin && booking.PickupAt().Sub(now) < s.settings.CancellationCutoff {
			s.logger.Warn("CancelBooking: booking id=%d pickup at %s is within cancellation cutoff",
				req.BookingID, booking.PickupAt().Format(time.RFC3339))
			return nil, ErrCancellationWindowPassed
		}
	}

	// 3. Возврат оплаты
	payment, err := s.getPayment(ctx, "CancelBooking", req.BookingID)
	if err != nil {
		return nil, err
	}

	outcome, refundID := models.RefundNone, ""
	if payment.IsSucceeded() {
		refundID, err = s.refund(ctx, payment)
		switch {
		case errors.Is(err, errNoExternalPayment):
			s.logger.Info("CancelBooking: booking id=%d was paid at the counter, refund is manual", req.BookingID)
			outcome = models.RefundManual
		case err != nil && !isAdmin:
			s.logger.Error("CancelBooking: refund failed for booking id=%d, booking kept: %v", req.BookingID, err)
			return nil, ErrRefundFailed
		case err != nil:
			s.logger.Error("CancelBooking: refund failed for booking id=%d, staff cancel proceeds: %v", req.BookingID, err)
			outcome = models.RefundPending
		default:
			outcome = models.RefundDone
		}
	}

	// 4. Фиксируем отмену
	reason := req.CancellationReason
	if reason == "" {
		reason = defaultUserCancelReason
		if isAdmin {
			reason = defaultStaffCancelReason
		}
	}

	from := booking.Status
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.Cancel(ctx, req.BookingID, domain.StatusesFrom(domain.StatusCancelled), reason, now); err != nil {
			return err
		}
		if outcome == models.RefundDone {
			return s.paymentRepo.MarkRefunded(ctx, req.BookingID, refundID)
		}
		return nil
	})
	if err != nil {
		if outcome == models.RefundDone {
			s.recordOrphanRefund(ctx, req.BookingID, refundID)
		}
		return nil, s.mapWriteError("CancelBooking", req.BookingID, err)
	}

	booking.Status = domain.StatusCancelled
	booking.CancellationReason = &reason
	booking.CancelledAt = &now
	booking.UpdatedAt = now
	s.recordTransition(from, domain.StatusCancelled)

	s.notify(ctx, "CancelBooking", bookingCancelledMessage(booking, reason))

	s.logger.Info("CancelBooking: booking id=%d cancelled by user=%d, refund=%s", req.BookingID, req.Actor.UserID, outcome)
	return &models.CancelResult{Booking: *models.FromDomainBooking(booking), Refund: outcome}, nil
}

// recordOrphanRefund фиксирует возврат, прошедший у провайдера, когда отмена не сохранилась.
// Без этого сверка возвратов вернула бы оплату повторно
func (s *Service) recordOrphanRefund(ctx context.Context, bookingID int64, refundID string) {
	if err := s.paymentRepo.MarkRefunded(ctx, bookingID, refundID); err != nil {
		s.logger.Error("CancelBooking: refund=%s for booking id=%d issued but not recorded: %v", refundID, bookingID, err)
		return
	}
	s.logger.Error("CancelBooking: refund=%s for booking id=%d issued but booking was not cancelled", refundID, bookingID)
}

func bookingCancelledMessage(b *domain.Booking, reason string) notifier.Message {
	return notifier.Message{
		Type:      notifier.TypeBookingCancelled,
		BookingID: b.ID,
		UserID:    b.Subject.UserID,
		Email:     guestEmail(b),
		Reason:    reason,
	}
}
