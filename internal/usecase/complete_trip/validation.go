package complete_trip

import "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if !req.Actor.IsAdmin() {
		return ErrStaffOnly
	}
	if req.BookingID <= 0 {
		return domain.NewError(domain.ErrBadUserInput, "booking id must be positive")
	}
	if req.EndOdometer < 0 {
		return domain.NewError(domain.ErrBadUserInput, "end odometer must not be negative")
	}
	if req.DamageFee < 0 || req.ExtraKmFee < 0 {
		return domain.NewError(domain.ErrBadUserInput, "fees must not be negative")
	}
	return nil
}
