package models

import (
	"time"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/types"
)

// Исход возврата средств при отмене
const (
	RefundNone    = "NONE"
	RefundDone    = "REFUNDED"
	RefundPending = "REFUND_PENDING" // возврат выполнит сверка планировщика
	RefundManual  = "REFUND_AT_COUNTER"
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Actor              domain.Actor
	BookingID          int64
	CancellationReason string
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	Actor  domain.Actor
	Status *string
}

// UpdateBookingRequest частичное изменение бронирования, nil поля не меняются
type UpdateBookingRequest struct {
	StartDate  *time.Time        `json:"startDate,omitempty"`
	EndDate    *time.Time        `json:"endDate,omitempty"`
	PickupTime *types.TimeString `json:"pickupTime,omitempty"`
	ReturnTime *types.TimeString `json:"returnTime,omitempty"`
	DamageFee  *float64          `json:"damageFee,omitempty" validate:"omitempty,gte=0"`
	ExtraKmFee *float64          `json:"extraKmFee,omitempty" validate:"omitempty,gte=0"`
}

// ChangesWindow returns true if the request moves the rental interval
func (r *UpdateBookingRequest) ChangesWindow() bool {
	return r.StartDate != nil || r.EndDate != nil
}

// ChangesFees returns true if the request touches staff-only fees
func (r *UpdateBookingRequest) ChangesFees() bool {
	return r.DamageFee != nil || r.ExtraKmFee != nil
}

// PaymentNotification подтверждение оплаты от платежного провайдера или стойки
type PaymentNotification struct {
	BookingID         int64
	Amount            float64
	Currency          string
	Method            domain.PaymentMethod
	ExternalSessionID *string
	ExternalPaymentID *string
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64   `json:"id"`
	UserID        *int64  `json:"userId,omitempty"`
	GuestName     *string `json:"guestName,omitempty"`
	GuestPhone    *string `json:"guestPhone,omitempty"`
	GuestEmail    *string `json:"guestEmail,omitempty"`
	CarID         int64   `json:"carId"`
	Kind          string  `json:"kind"`
	StartDate     string  `json:"startDate"` // RFC3339
	EndDate       string  `json:"endDate"`
	PickupTime    *string `json:"pickupTime,omitempty"` // "10:00"
	ReturnTime    *string `json:"returnTime,omitempty"`
	Status        string  `json:"status"`
	BasePrice     float64 `json:"basePrice"`
	TaxAmount     float64 `json:"taxAmount"`
	TotalPrice    float64 `json:"totalPrice"`
	DepositAmount float64 `json:"depositAmount"`
	DamageFee     float64 `json:"damageFee"`
	ExtraKmFee    float64 `json:"extraKmFee"`
	StartOdometer *int64  `json:"startOdometer,omitempty"`
	EndOdometer   *int64  `json:"endOdometer,omitempty"`
	IsWalkIn      bool    `json:"isWalkIn"`

	CreatedByStaff bool `json:"createdByStaff"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// ConfirmResponse результат подтверждения черновика
type ConfirmResponse struct {
	Booking               BookingResponse `json:"booking"`
	VerificationExpiresAt time.Time       `json:"verificationExpiresAt"`
}

// CheckoutResponse ссылка на оплату
type CheckoutResponse struct {
	RedirectURL string `json:"redirectUrl"`
	SessionID   string `json:"sessionId"`
}

// CancelResult результат отмены
type CancelResult struct {
	Booking BookingResponse `json:"booking"`
	Refund  string          `json:"refund"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		UserID:             b.Subject.UserID,
		CarID:              b.CarID,
		Kind:               string(b.Kind),
		StartDate:          b.StartDate.Format(time.RFC3339),
		EndDate:            b.EndDate.Format(time.RFC3339),
		Status:             string(b.Status),
		BasePrice:          b.BasePrice,
		TaxAmount:          b.TaxAmount,
		TotalPrice:         b.TotalPrice,
		DepositAmount:      b.DepositAmount,
		DamageFee:          b.DamageFee,
		ExtraKmFee:         b.ExtraKmFee,
		StartOdometer:      b.StartOdometer,
		EndOdometer:        b.EndOdometer,
		IsWalkIn:           b.IsWalkIn,
		CreatedByStaff:     b.CreatedByStaff,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if g := b.Subject.Guest; g != nil {
		name, phone := g.Name, g.Phone
		resp.GuestName = &name
		resp.GuestPhone = &phone
		resp.GuestEmail = g.Email
	}
	if b.PickupTime != nil {
		s := b.PickupTime.String()
		resp.PickupTime = &s
	}
	if b.ReturnTime != nil {
		s := b.ReturnTime.String()
		resp.ReturnTime = &s
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
