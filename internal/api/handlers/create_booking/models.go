package create_booking

import (
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
	createBooking "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/create_booking"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	CarID      int64         `json:"carId" validate:"required,gt=0"`
	StartDate  time.Time     `json:"startDate" validate:"required"` // RFC3339
	EndDate    time.Time     `json:"endDate" validate:"required"`
	PickupTime *string       `json:"pickupTime,omitempty"` // "10:00"
	ReturnTime *string       `json:"returnTime,omitempty"`
	Kind       string        `json:"kind,omitempty" validate:"omitempty,oneof=RENTAL REPLACEMENT"`
	Guest      *GuestRequest `json:"guest,omitempty"`
	ForUserID  *int64        `json:"forUserId,omitempty" validate:"omitempty,gt=0"`
}

// GuestRequest контакты клиента walk-in
type GuestRequest struct {
	Name  string  `json:"name" validate:"required"`
	Phone string  `json:"phone" validate:"required"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	Booking *models.BookingResponse `json:"booking"`
	Days    int                     `json:"days"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(actor domain.Actor) (*createBooking.Request, error) {
	req := &createBooking.Request{
		Actor:     actor,
		CarID:     r.CarID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Kind:      domain.BookingKind(r.Kind),
		ForUserID: r.ForUserID,
	}

	if r.PickupTime != nil {
		t, err := types.NewTimeStringFromString(*r.PickupTime)
		if err != nil {
			return nil, err
		}
		req.PickupTime = &t
	}
	if r.ReturnTime != nil {
		t, err := types.NewTimeStringFromString(*r.ReturnTime)
		if err != nil {
			return nil, err
		}
		req.ReturnTime = &t
	}
	if r.Guest != nil {
		req.Guest = &domain.GuestContact{Name: r.Guest.Name, Phone: r.Guest.Phone, Email: r.Guest.Email}
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		Booking: models.FromDomainBooking(resp.Booking),
		Days:    resp.Days,
	}
}
