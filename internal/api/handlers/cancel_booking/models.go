package cancel_booking

import (
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty" validate:"omitempty,max=500"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(actor domain.Actor, bookingID int64) *models.CancelBookingRequest {
	reason := ""
	if r.CancellationReason != nil {
		reason = *r.CancellationReason
	}

	return &models.CancelBookingRequest{
		Actor:              actor,
		BookingID:          bookingID,
		CancellationReason: reason,
	}
}
