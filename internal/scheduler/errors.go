package scheduler

import (
	"errors"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
)

// ErrAlreadyRunning возвращается, когда предыдущий запуск еще не завершился
var ErrAlreadyRunning = domain.NewError(domain.ErrAlreadyExists, "expiration sweep is already running")

// ErrSweep возвращается, когда запуск завершился ошибкой
var ErrSweep = errors.New("scheduler: sweep failed")
