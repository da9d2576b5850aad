package complete_trip

import "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"

// Request модель запроса на возврат автомобиля
type Request struct {
	Actor       domain.Actor
	BookingID   int64
	EndOdometer int64
	DamageFee   float64
	ExtraKmFee  float64
}

// Response состояние бронирования и автомобиля после возврата
type Response struct {
	Booking   *domain.Booking
	CarStatus domain.CarStatus
}
