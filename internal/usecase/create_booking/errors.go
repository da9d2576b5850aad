package create_booking

import (
	"errors"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

var (
	// ErrCarNotFound возвращается, когда автомобиль не найден
	ErrCarNotFound = domain.NewError(domain.ErrNotFound, "car not found")

	// ErrCarOutOfService возвращается, когда автомобиль выведен из эксплуатации
	ErrCarOutOfService = domain.NewError(domain.ErrBadUserInput, "car is out of service")

	// ErrStaffOnly возвращается клиенту при попытке создать walk-in или подменное бронирование
	ErrStaffOnly = domain.NewError(domain.ErrForbidden, "only staff can create walk-in or replacement bookings")

	// ErrCarBusy возвращается, когда автомобиль заблокирован параллельной операцией
	ErrCarBusy = domain.NewError(domain.ErrAlreadyExists, "car is being booked by another request, retry later")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = domain.NewError(domain.ErrBadUserInput, "invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
