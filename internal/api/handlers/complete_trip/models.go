package complete_trip

import (
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
	completeTrip "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/complete_trip"
)

// CompleteTripRequest HTTP request model
type CompleteTripRequest struct {
	EndOdometer int64   `json:"endOdometer" validate:"gte=0"`
	DamageFee   float64 `json:"damageFee" validate:"gte=0"`
	ExtraKmFee  float64 `json:"extraKmFee" validate:"gte=0"`
}

// TripResponse HTTP response model
type TripResponse struct {
	Booking   *models.BookingResponse `json:"booking"`
	CarStatus string                  `json:"carStatus"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *completeTrip.Response) *TripResponse {
	return &TripResponse{
		Booking:   models.FromDomainBooking(resp.Booking),
		CarStatus: string(resp.CarStatus),
	}
}
