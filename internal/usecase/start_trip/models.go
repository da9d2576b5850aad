package start_trip

import "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"

// Request модель запроса на выдачу автомобиля
type Request struct {
	Actor         domain.Actor
	BookingID     int64
	StartOdometer int64
}

// Response состояние бронирования и автомобиля после выдачи
type Response struct {
	Booking   *domain.Booking
	CarStatus domain.CarStatus
}
