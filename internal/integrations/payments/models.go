package payments

// CheckoutRequest параметры платежной сессии
type CheckoutRequest struct {
	BookingID   int64
	Amount      float64 // в основной валюте, например 110.50
	Description string
	Email       *string
}

// Checkout созданная платежная сессия
type Checkout struct {
	RedirectURL       string
	ExternalSessionID string
}

// EventType тип входящего уведомления шлюза
type EventType string

const (
	EventPaymentSucceeded EventType = "PAYMENT_SUCCEEDED"
	EventPaymentFailed    EventType = "PAYMENT_FAILED"
	EventIgnored          EventType = "IGNORED"
)

// Event разобранное уведомление шлюза
type Event struct {
	ID                string
	Type              EventType
	BookingID         int64
	ExternalSessionID string
	ExternalPaymentID string
	Amount            float64
	Currency          string
}

// Config настройки шлюза
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}
