package availability

import (
	"errors"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

var (
	// ErrBookingConflict возвращается, когда интервал пересекается с активным бронированием
	ErrBookingConflict = domain.NewError(domain.ErrAlreadyExists, "car is already booked for the requested period")

	// ErrInvalidWindow возвращается при некорректном интервале поиска
	ErrInvalidWindow = domain.NewError(domain.ErrBadUserInput, "start date must be before end date")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)

// ConflictError отказ в бронировании с перечнем пересекающихся бронирований
type ConflictError struct {
	Conflicts []*domain.Booking
}

func (e *ConflictError) Error() string {
	return ErrBookingConflict.Error()
}

func (e *ConflictError) Unwrap() error {
	return ErrBookingConflict
}
