package run_expiration

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/expire_bookings"
)

type Scheduler interface {
	RunNow(ctx context.Context) (*expire_bookings.Report, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
