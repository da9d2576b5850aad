package documents_webhook

import (
	"crypto/subtle"
	"net/http"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/documents"
)

const (
	secretHeader = "X-Webhook-Secret"

	msgInvalidSecret      = "invalid webhook secret"
	msgInvalidRequestBody = "invalid request body"
	defaultRejectReason   = "driver documents rejected"
)

// AckResponse ответ сервису документов
type AckResponse struct {
	BookingID int64  `json:"bookingId"`
	Status    string `json:"status,omitempty"`
}

type Handler struct {
	service BookingService
	secret  string
	logger  Logger
}

func NewHandler(service BookingService, secret string, logger Logger) *Handler {
	return &Handler{
		service: service,
		secret:  secret,
		logger:  logger,
	}
}

// Handle POST /api/v1/webhooks/documents
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get(secretHeader)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		h.logger.Warn("POST /webhooks/documents - Invalid secret from %s", r.RemoteAddr)
		handlers.RespondUnauthorized(w, msgInvalidSecret)
		return
	}

	var event documents.Event
	if err := handlers.DecodeJSON(r, &event); err != nil {
		h.logger.Warn("POST /webhooks/documents - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(&event); err != nil {
		h.logger.Warn("POST /webhooks/documents - Validation failed: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	var (
		status string
		err    error
	)
	switch event.Type {
	case documents.EventStarted:
		err = h.service.RecordDocumentAttempt(r.Context(), event.BookingID)

	case documents.EventApproved:
		booking, verr := h.service.VerifyByDocuments(r.Context(), event.BookingID)
		if verr == nil {
			status = booking.Status
		}
		err = verr

	case documents.EventRejected:
		reason := event.Reason
		if reason == "" {
			reason = defaultRejectReason
		}
		result, rerr := h.service.Reject(r.Context(), event.BookingID, reason)
		if rerr == nil {
			status = result.Booking.Status
		}
		err = rerr
	}

	if err != nil {
		if handlers.IsInternal(err) {
			h.logger.Error("POST /webhooks/documents - Failed to apply %s: booking_id=%d, error=%v", event.Type, event.BookingID, err)
		} else {
			h.logger.Warn("POST /webhooks/documents - %s rejected: booking_id=%d, reason=%v", event.Type, event.BookingID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /webhooks/documents - %s applied: booking_id=%d", event.Type, event.BookingID)
	handlers.RespondJSON(w, http.StatusOK, AckResponse{BookingID: event.BookingID, Status: status})
}
