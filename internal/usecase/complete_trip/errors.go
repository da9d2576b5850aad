package complete_trip

import (
	"errors"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = domain.NewError(domain.ErrNotFound, "booking not found")

	// ErrStaffOnly возвращается, когда возврат оформляет не сотрудник
	ErrStaffOnly = domain.NewError(domain.ErrForbidden, "only staff can complete a trip")

	// ErrInvalidStatus возвращается, когда поездка не начата
	ErrInvalidStatus = domain.NewError(domain.ErrBadUserInput, "only ongoing bookings can be completed")

	// ErrOdometerRollback возвращается, когда пробег при возврате меньше пробега при выдаче
	ErrOdometerRollback = domain.NewError(domain.ErrBadUserInput, "end odometer must not be less than start odometer")

	// ErrInternal возвращается при внутренних ошибках usecase, в том числе после отката транзакции
	ErrInternal = errors.New("complete_trip: internal error")
)
