package payment_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/domain"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/payments"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings/models"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/ptr"
)

const (
	signatureHeader = "Stripe-Signature"
	maxPayloadBytes = 64 << 10

	msgInvalidPayload   = "invalid webhook payload"
	msgInvalidSignature = "invalid webhook signature"
)

// AckResponse ответ шлюзу
type AckResponse struct {
	Received bool   `json:"received"`
	Result   string `json:"result"`
}

type Handler struct {
	service BookingService
	parser  EventParser
	logger  Logger
}

func NewHandler(service BookingService, parser EventParser, logger Logger) *Handler {
	return &Handler{
		service: service,
		parser:  parser,
		logger:  logger,
	}
}

// Handle POST /api/v1/webhooks/payments
// Шлюз повторяет доставку при ответе не 2xx, поэтому 5xx возвращается только при внутренних ошибках
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Warn("POST /webhooks/payments - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	event, err := h.parser.ParseEvent(payload, r.Header.Get(signatureHeader))
	if err != nil {
		h.logger.Warn("POST /webhooks/payments - Rejected event: %v", err)
		if errors.Is(err, payments.ErrInvalidSignature) {
			handlers.RespondBadRequest(w, msgInvalidSignature)
			return
		}
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	switch event.Type {
	case payments.EventPaymentSucceeded:
		h.handleSucceeded(w, r, event)
	case payments.EventPaymentFailed:
		h.handleFailed(w, r, event)
	default:
		handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Result: "ignored"})
	}
}

func (h *Handler) handleSucceeded(w http.ResponseWriter, r *http.Request, event *payments.Event) {
	n := models.PaymentNotification{
		BookingID:         event.BookingID,
		Amount:            event.Amount,
		Currency:          event.Currency,
		Method:            domain.PaymentMethodOnline,
		ExternalSessionID: ptr.Ptr(event.ExternalSessionID),
	}
	if event.ExternalPaymentID != "" {
		n.ExternalPaymentID = ptr.Ptr(event.ExternalPaymentID)
	}

	booking, err := h.service.PayConfirm(r.Context(), n)
	switch {
	case err == nil:
		h.logger.Info("POST /webhooks/payments - Payment confirmed: event_id=%s, booking_id=%d, status=%s",
			event.ID, event.BookingID, booking.Status)
		handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Result: "confirmed"})

	case errors.Is(err, bookings.ErrPaymentAlreadySucceeded):
		h.logger.Info("POST /webhooks/payments - Duplicate notification: event_id=%s, booking_id=%d", event.ID, event.BookingID)
		handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Result: "duplicate"})

	case handlers.IsInternal(err):
		h.logger.Error("POST /webhooks/payments - Failed to confirm payment: event_id=%s, booking_id=%d, error=%v",
			event.ID, event.BookingID, err)
		handlers.RespondInternalError(w)

	default:
		// повтор доставки ничего не изменит
		h.logger.Warn("POST /webhooks/payments - Payment not applied: event_id=%s, booking_id=%d, reason=%v",
			event.ID, event.BookingID, err)
		handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Result: "rejected"})
	}
}

func (h *Handler) handleFailed(w http.ResponseWriter, r *http.Request, event *payments.Event) {
	if err := h.service.MarkPaymentFailed(r.Context(), event.BookingID); err != nil {
		if handlers.IsInternal(err) {
			h.logger.Error("POST /webhooks/payments - Failed to mark payment failed: booking_id=%d, error=%v", event.BookingID, err)
			handlers.RespondInternalError(w)
			return
		}
		h.logger.Warn("POST /webhooks/payments - Payment failure not applied: booking_id=%d, reason=%v", event.BookingID, err)
	}

	h.logger.Info("POST /webhooks/payments - Payment failed: event_id=%s, booking_id=%d", event.ID, event.BookingID)
	handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Result: "failed"})
}
