package payment

import "errors"

var (
	// ErrPaymentNotFound возвращается, когда у бронирования нет оплаты
	ErrPaymentNotFound = errors.New("payment.repository: payment not found")

	// ErrAlreadySucceeded возвращается при повторной фиксации успешной оплаты
	ErrAlreadySucceeded = errors.New("payment.repository: payment already succeeded")

	// ErrStatusMismatch возвращается, когда статус оплаты отличается от ожидаемого
	ErrStatusMismatch = errors.New("payment.repository: payment status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("payment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("payment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("payment.repository: failed to scan row")
)
