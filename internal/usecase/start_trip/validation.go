package start_trip

import "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if !req.Actor.IsAdmin() {
		return ErrStaffOnly
	}
	if req.BookingID <= 0 {
		return domain.NewError(domain.ErrBadUserInput, "booking id must be positive")
	}
	if req.StartOdometer < 0 {
		return ErrInvalidInput
	}
	return nil
}

// requiresDocuments проверка документов пропускается для walk-in, их проверили на стойке
func requiresDocuments(b *domain.Booking) bool {
	return !b.IsWalkIn && b.Subject.UserID != nil
}
