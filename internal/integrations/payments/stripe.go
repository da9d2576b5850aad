package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/refund"
	"github.com/stripe/stripe-go/v74/webhook"
)

const metadataBookingID = "booking_id"

// StripeClient платежный шлюз поверх Stripe Checkout
type StripeClient struct {
	cfg Config
}

// NewStripeClient инициализирует stripe ключом из конфигурации
func NewStripeClient(cfg Config) *StripeClient {
	stripe.Key = cfg.SecretKey
	return &StripeClient{cfg: cfg}
}

// CreateCheckout создает платежную сессию на сумму бронирования
func (s *StripeClient) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	bookingID := strconv.FormatInt(req.BookingID, 10)

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(bookingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.cfg.Currency),
					UnitAmount: stripe.Int64(toMinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{metadataBookingID: bookingID},
		},
	}
	if req.Email != nil {
		params.CustomerEmail = req.Email
	}
	params.Context = ctx
	params.AddMetadata(metadataBookingID, bookingID)
	params.SetIdempotencyKey(fmt.Sprintf("checkout-booking-%s-%d", bookingID, toMinorUnits(req.Amount)))

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrGateway, err)
	}

	return &Checkout{RedirectURL: sess.URL, ExternalSessionID: sess.ID}, nil
}

// Refund возвращает платеж. Ключ идемпотентности привязан к бронированию,
// поэтому повторный возврат того же бронирования не списывает деньги дважды
func (s *StripeClient) Refund(ctx context.Context, bookingID int64, externalPaymentID string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(externalPaymentID),
	}
	params.Context = ctx
	params.AddMetadata(metadataBookingID, strconv.FormatInt(bookingID, 10))
	params.SetIdempotencyKey(RefundIdempotencyKey(bookingID))

	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: refund payment %s: %v", ErrGateway, externalPaymentID, err)
	}

	return r.ID, nil
}

// ParseEvent проверяет подпись уведомления и извлекает из него данные оплаты
func (s *StripeClient) ParseEvent(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &Event{ID: event.ID, Type: EventIgnored}

	switch string(event.Type) {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		result.Type = EventPaymentSucceeded
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		result.Type = EventPaymentFailed
	default:
		return result, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session: %v", ErrInvalidEvent, err)
	}

	// completed приходит и для отложенных способов оплаты, деньги еще не получены
	if string(event.Type) == "checkout.session.completed" && sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		result.Type = EventIgnored
		return result, nil
	}

	bookingID, err := strconv.ParseInt(sess.Metadata[metadataBookingID], 10, 64)
	if err != nil {
		bookingID, err = strconv.ParseInt(sess.ClientReferenceID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: checkout session %s has no booking reference", ErrInvalidEvent, sess.ID)
		}
	}

	result.BookingID = bookingID
	result.ExternalSessionID = sess.ID
	result.Amount = float64(sess.AmountTotal) / 100
	result.Currency = string(sess.Currency)
	if sess.PaymentIntent != nil {
		result.ExternalPaymentID = sess.PaymentIntent.ID
	}

	return result, nil
}

// RefundIdempotencyKey ключ идемпотентности возврата по бронированию
func RefundIdempotencyKey(bookingID int64) string {
	return "refund-booking-" + strconv.FormatInt(bookingID, 10)
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
