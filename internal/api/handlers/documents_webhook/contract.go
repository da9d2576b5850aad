package documents_webhook

import (
	"context"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
)

type BookingService interface {
	RecordDocumentAttempt(ctx context.Context, bookingID int64) error
	VerifyByDocuments(ctx context.Context, bookingID int64) (*models.BookingResponse, error)
	Reject(ctx context.Context, bookingID int64, reason string) (*models.CancelResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
