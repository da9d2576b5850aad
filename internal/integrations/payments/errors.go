package payments

import "errors"

var (
	// ErrGateway возвращается при ошибке платежного шлюза
	ErrGateway = errors.New("payments: gateway error")

	// ErrInvalidSignature возвращается, когда подпись уведомления не прошла проверку
	ErrInvalidSignature = errors.New("payments: invalid webhook signature")

	// ErrInvalidEvent возвращается, когда уведомление не удалось разобрать
	ErrInvalidEvent = errors.New("payments: invalid webhook event")
)
