package start_trip

import (
	"errors"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = domain.NewError(domain.ErrNotFound, "booking not found")

	// ErrStaffOnly возвращается, когда выдачу оформляет не сотрудник
	ErrStaffOnly = domain.NewError(domain.ErrForbidden, "only staff can start a trip")

	// ErrInvalidStatus возвращается, когда бронирование не подтверждено
	ErrInvalidStatus = domain.NewError(domain.ErrBadUserInput, "only confirmed or verified bookings can be started")

	// ErrPaymentRequired возвращается, когда оплата еще не прошла
	ErrPaymentRequired = domain.NewError(domain.ErrBadUserInput, "booking is not paid")

	// ErrDocumentsNotApproved возвращается, когда документы водителя не одобрены
	ErrDocumentsNotApproved = domain.NewError(domain.ErrBadUserInput, "driver documents are not approved")

	// ErrCarNotReady возвращается, когда автомобиль еще в аренде или на обслуживании
	ErrCarNotReady = domain.NewError(domain.ErrBadUserInput, "car is not ready for pickup")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = domain.NewError(domain.ErrBadUserInput, "start odometer must not be negative")

	// ErrInternal возвращается при внутренних ошибках usecase, в том числе после отката транзакции
	ErrInternal = errors.New("start_trip: internal error")
)
