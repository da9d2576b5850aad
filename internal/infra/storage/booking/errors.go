package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrOverlap возвращается, когда запись нарушает ограничение на пересечение активных бронирований
	// (exclusion constraint или конфликт сериализуемой транзакции)
	ErrOverlap = errors.New("booking.repository: booking window overlaps an active booking")

	// ErrStatusMismatch возвращается, когда бронирование не находится в ожидаемом статусе
	// Условное обновление не затронуло ни одной строки
	ErrStatusMismatch = errors.New("booking.repository: booking status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
