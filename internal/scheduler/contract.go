package scheduler

import (
	"context"
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/expire_bookings"
)

// Sweeper задача, выполняемая на каждом тике
type Sweeper interface {
	Execute(ctx context.Context) (*expire_bookings.Report, error)
}

// Locker блокировка между инстансами сервиса
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Metrics учет пропущенных тиков
type Metrics interface {
	IncSkippedTick()
}

// Ticker источник тиков
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock источник времени и тиков, подменяется в тестах
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealClock реализация Clock поверх пакета time
type RealClock struct{}

// Now возвращает текущее время
func (RealClock) Now() time.Time {
	return time.Now()
}

// NewTicker создает time.Ticker
func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
