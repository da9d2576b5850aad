package domain

import "time"

// PaymentStatus статус оплаты бронирования
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// PaymentMethod способ оплаты
type PaymentMethod string

const (
	PaymentMethodOnline  PaymentMethod = "ONLINE"
	PaymentMethodCounter PaymentMethod = "COUNTER" // оплата на стойке выдачи
)

// Payment оплата бронирования (одна на бронирование)
type Payment struct {
	ID                int64
	BookingID         int64
	Amount            float64
	Currency          string
	Status            PaymentStatus
	Method            PaymentMethod
	ExternalSessionID *string
	ExternalPaymentID *string
	RefundID          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsSucceeded returns true when money has been captured and not returned
func (p *Payment) IsSucceeded() bool {
	return p != nil && p.Status == PaymentSucceeded
}
