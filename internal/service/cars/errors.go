package cars

import (
	"errors"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

var (
	// ErrCarNotFound возвращается, когда автомобиль не найден
	ErrCarNotFound = domain.NewError(domain.ErrNotFound, "car not found")

	// ErrAccessDenied возвращается, когда действие доступно только сотруднику
	ErrAccessDenied = domain.NewError(domain.ErrForbidden, "access denied")

	// ErrNotInMaintenance возвращается, когда автомобиль не на обслуживании
	ErrNotInMaintenance = domain.NewError(domain.ErrBadUserInput, "car is not in maintenance")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("cars: internal error")
)
