package bookings

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
)

// Update изменяет даты, время выдачи и возврата или начисления бронирования
// Клиент меняет только свой черновик или PENDING бронирование, сотрудник - любое незавершенное.
// При переносе интервал перепроверяется на пересечения и стоимость пересчитывается
func (s *Service) Update(ctx context.Context, actor domain.Actor, bookingID int64, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	// 1. Получаем бронирование и проверяем права
	booking, err := s.getBooking(ctx, "UpdateBooking", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkAccess(booking, actor); err != nil {
		s.logger.Warn("UpdateBooking: user=%d has no access to booking id=%d", actor.UserID, bookingID)
		return nil, err
	}

	if booking.IsTerminal() {
		s.logger.Warn("UpdateBooking: booking id=%d has terminal status=%s", bookingID, booking.Status)
		return nil, ErrCannotUpdate
	}

	if !actor.IsAdmin() {
		if booking.Status != domain.StatusDraft && booking.Status != domain.StatusPending {
			s.logger.Warn("UpdateBooking: user=%d cannot change booking id=%d in status=%s", actor.UserID, bookingID, booking.Status)
			return nil, ErrCannotUpdate
		}
		if req.ChangesFees() {
			s.logger.Warn("UpdateBooking: user=%d tried to change fees of booking id=%d", actor.UserID, bookingID)
			return nil, ErrFeesForbidden
		}
	}

	// 2. Применяем изменения к копии
	updated := *booking
	if err := applyUpdate(&updated, req); err != nil {
		s.logger.Warn("UpdateBooking: invalid update for booking id=%d: %v", bookingID, err)
		return nil, err
	}

	if req.ChangesWindow() {
		if booking.Status == domain.StatusOngoing && req.StartDate != nil && !req.StartDate.Equal(booking.StartDate) {
			s.logger.Warn("UpdateBooking: cannot move start of ongoing booking id=%d", bookingID)
			return nil, ErrCannotUpdate
		}
		if err := domain.ValidateDuration(updated.Window()); err != nil {
			s.logger.Warn("UpdateBooking: invalid window for booking id=%d: %v", bookingID, err)
			return nil, err
		}
	}

	// 3. Сохраняем: при переносе под блокировкой автомобиля и с перепроверкой пересечений
	save := func(ctx context.Context) error {
		return s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
			var car *domain.Car
			if req.ChangesWindow() {
				c, err := s.lockCar(ctx, booking.CarID)
				if err != nil {
					return err
				}
				car = c
			}

			current, err := s.bookingRepo.GetByID(ctx, bookingID)
			if err != nil {
				return err
			}
			if current.Status != booking.Status {
				return ErrInvalidTransition
			}

			if req.ChangesWindow() {
				if current.IsActive() {
					if err := s.availability.CheckAvailable(ctx, current.CarID, updated.Window(), &current.ID); err != nil {
						return err
					}
				}

				domain.QuoteRental(updated.Window(), car.PricePerDay, s.settings.TaxRate, s.settings.DepositAmount, updated.Kind).
					Apply(&updated)
			}

			return s.bookingRepo.Update(ctx, &updated)
		})
	}

	if req.ChangesWindow() {
		err = s.withCarLock(ctx, booking.CarID, save)
	} else {
		err = save(ctx)
	}
	if err != nil {
		return nil, s.mapWriteError("UpdateBooking", bookingID, err)
	}

	updated.UpdatedAt = s.timeProvider.Now()

	s.logger.Info("UpdateBooking: booking id=%d updated by user=%d", bookingID, actor.UserID)
	return models.FromDomainBooking(&updated), nil
}

func applyUpdate(b *domain.Booking, req *models.UpdateBookingRequest) error {
	if req.StartDate != nil {
		b.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		b.EndDate = *req.EndDate
	}
	if req.PickupTime != nil {
		if err := req.PickupTime.Validate(); err != nil {
			return domain.NewError(domain.ErrBadUserInput, "pickup time must be in HH:MM format")
		}
		b.PickupTime = req.PickupTime
	}
	if req.ReturnTime != nil {
		if err := req.ReturnTime.Validate(); err != nil {
			return domain.NewError(domain.ErrBadUserInput, "return time must be in HH:MM format")
		}
		b.ReturnTime = req.ReturnTime
	}
	if req.DamageFee != nil {
		if *req.DamageFee < 0 {
			return domain.NewError(domain.ErrBadUserInput, "damage fee must not be negative")
		}
		b.DamageFee = *req.DamageFee
	}
	if req.ExtraKmFee != nil {
		if *req.ExtraKmFee < 0 {
			return domain.NewError(domain.ErrBadUserInput, "extra km fee must not be negative")
		}
		b.ExtraKmFee = *req.ExtraKmFee
	}
	return nil
}
