package bookings

import (
	"errors"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = domain.NewError(domain.ErrNotFound, "booking not found")

	// ErrCarNotFound возвращается, когда автомобиль бронирования не найден
	ErrCarNotFound = domain.NewError(domain.ErrNotFound, "car not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = domain.NewError(domain.ErrForbidden, "access denied")

	// ErrInvalidTransition возвращается, когда текущий статус не допускает действие
	ErrInvalidTransition = domain.NewError(domain.ErrBadUserInput, "booking status does not allow this action")

	// ErrCannotCancel возвращается для завершенных и уже отмененных бронирований
	ErrCannotCancel = domain.NewError(domain.ErrBadUserInput, "booking cannot be cancelled")

	// ErrOngoingCancel возвращается клиенту при попытке отменить поездку
	ErrOngoingCancel = domain.NewError(domain.ErrForbidden, "an ongoing booking cannot be cancelled")

	// ErrCancellationWindowPassed возвращается, когда до выдачи осталось меньше 24 часов
	ErrCancellationWindowPassed = domain.NewError(domain.ErrForbidden, "cancellation is not allowed less than 24 hours before pickup")

	// ErrCannotDelete возвращается при удалении бронирования не в DRAFT/CANCELLED
	ErrCannotDelete = domain.NewError(domain.ErrBadUserInput, "only draft or cancelled bookings can be deleted")

	// ErrCannotUpdate возвращается, когда бронирование уже нельзя изменить
	ErrCannotUpdate = domain.NewError(domain.ErrBadUserInput, "booking can no longer be changed")

	// ErrFeesForbidden возвращается клиенту при попытке изменить начисления
	ErrFeesForbidden = domain.NewError(domain.ErrForbidden, "only staff can change fees")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = domain.NewError(domain.ErrBadUserInput, "invalid input data")

	// ErrTokenNotFound возвращается для неизвестного токена подтверждения
	ErrTokenNotFound = domain.NewError(domain.ErrNotFound, "verification link is invalid")

	// ErrTokenExpired возвращается для просроченного токена подтверждения
	ErrTokenExpired = domain.NewError(domain.ErrBadUserInput, "verification link has expired")

	// ErrPaymentNotAllowed возвращается, когда бронирование не ожидает оплату
	ErrPaymentNotAllowed = domain.NewError(domain.ErrBadUserInput, "booking is not awaiting payment")

	// ErrPaymentAlreadySucceeded возвращается для повторного подтверждения оплаты
	ErrPaymentAlreadySucceeded = domain.NewError(domain.ErrAlreadyExists, "payment already succeeded")

	// ErrCarBusy возвращается, когда автомобиль заблокирован параллельной операцией
	ErrCarBusy = domain.NewError(domain.ErrAlreadyExists, "car is being booked by another request, retry later")

	// ErrRefundFailed возвращается, когда возврат не удался и бронирование не отменено
	ErrRefundFailed = errors.New("refund failed, booking was not cancelled")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
