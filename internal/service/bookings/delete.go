package bookings

import (
	"context"
	"errors"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

// Delete физически удаляет черновик или отмененное бронирование
func (s *Service) Delete(ctx context.Context, actor domain.Actor, bookingID int64) error {
	booking, err := s.getBooking(ctx, "DeleteBooking", bookingID)
	if err != nil {
		return err
	}

	if err := s.checkAccess(booking, actor); err != nil {
		s.logger.Warn("DeleteBooking: user=%d has no access to booking id=%d", actor.UserID, bookingID)
		return err
	}

	if !booking.CanBeDeleted() {
		s.logger.Warn("DeleteBooking: booking id=%d has status=%s", bookingID, booking.Status)
		return ErrCannotDelete
	}

	if err := s.bookingRepo.Delete(ctx, bookingID, domain.DeletableStatuses); err != nil {
		mapped := s.mapWriteError("DeleteBooking", bookingID, err)
		if errors.Is(mapped, ErrInvalidTransition) {
			return ErrCannotDelete
		}
		return mapped
	}

	s.logger.Info("DeleteBooking: booking id=%d deleted by user=%d", bookingID, actor.UserID)
	return nil
}
