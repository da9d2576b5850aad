package start_trip

import (
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
	startTrip "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/start_trip"
)

// StartTripRequest HTTP request model
type StartTripRequest struct {
	StartOdometer int64 `json:"startOdometer" validate:"gte=0"`
}

// TripResponse HTTP response model
type TripResponse struct {
	Booking   *models.BookingResponse `json:"booking"`
	CarStatus string                  `json:"carStatus"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *startTrip.Response) *TripResponse {
	return &TripResponse{
		Booking:   models.FromDomainBooking(resp.Booking),
		CarStatus: string(resp.CarStatus),
	}
}
