package create_booking

import (
	"fmt"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CarID <= 0 {
		return domain.NewError(domain.ErrBadUserInput, "carId must be positive")
	}

	if req.Kind == "" {
		req.Kind = domain.KindRental
	}
	if req.Kind != domain.KindRental && req.Kind != domain.KindReplacement {
		return domain.NewError(domain.ErrBadUserInput, fmt.Sprintf("unknown booking kind %q", req.Kind))
	}

	// Валидируем формат времени выдачи и возврата
	if req.PickupTime != nil {
		if err := req.PickupTime.Validate(); err != nil {
			return domain.NewError(domain.ErrBadUserInput, "pickupTime must be in HH:MM format")
		}
	}
	if req.ReturnTime != nil {
		if err := req.ReturnTime.Validate(); err != nil {
			return domain.NewError(domain.ErrBadUserInput, "returnTime must be in HH:MM format")
		}
	}

	return nil
}

// resolveSubject определяет, на кого оформляется бронирование
// Walk-in и подменные бронирования оформляет только сотрудник
func resolveSubject(req *Request) (domain.Subject, error) {
	staffOnly := req.Guest != nil || req.ForUserID != nil || req.Kind == domain.KindReplacement
	if staffOnly && !req.Actor.IsAdmin() {
		return domain.Subject{}, ErrStaffOnly
	}

	subject := domain.UserSubject(req.Actor.UserID)
	switch {
	case req.Guest != nil && req.ForUserID != nil:
		return domain.Subject{}, domain.NewError(domain.ErrBadUserInput, "booking must reference either a user or a guest, not both")
	case req.Guest != nil:
		subject = domain.GuestSubject(*req.Guest)
	case req.ForUserID != nil:
		subject = domain.UserSubject(*req.ForUserID)
	}

	if err := subject.Validate(); err != nil {
		return domain.Subject{}, err
	}
	return subject, nil
}
