package cancel_booking

import (
	"errors"
	"net/http"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/middleware"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings"
)

const (
	msgInvalidBookingID   = "invalid booking id"
	msgInvalidRequestBody = "invalid request body"
	msgRefundFailed       = "refund could not be processed, the booking was not cancelled; please retry later"
	msgUnauthorized       = "authentication required"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Тело необязательно: причина отмены опциональна
	var req CancelBookingRequest
	if err := handlers.DecodeOptionalJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(&req); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.Cancel(r.Context(), req.ToServiceRequest(actor, bookingID))
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrRefundFailed):
			h.logger.Error("POST /bookings/{id}/cancel - Refund failed, booking kept: booking_id=%d, user_id=%d, error=%v",
				bookingID, actor.UserID, err)
			handlers.RespondError(w, http.StatusBadGateway, handlers.CodeRefundFailed, msgRefundFailed)

		case handlers.IsInternal(err):
			h.logger.Error("POST /bookings/{id}/cancel - Failed to cancel booking: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondDomainError(w, err)

		default:
			h.logger.Warn("POST /bookings/{id}/cancel - Rejected: booking_id=%d, user_id=%d, reason=%v", bookingID, actor.UserID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/cancel - Booking cancelled successfully: booking_id=%d, user_id=%d, refund=%s",
		bookingID, actor.UserID, result.Refund)
	handlers.RespondJSON(w, http.StatusOK, result)
}
