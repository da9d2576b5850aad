package confirm_booking

import (
	"net/http"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/middleware"
)

const (
	msgInvalidBookingID = "invalid booking id"
	msgUnauthorized     = "authentication required"
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

// Handle POST /api/v1/bookings/{bookingId}/confirm
// DRAFT -> PENDING, клиенту отправляется ссылка подтверждения
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/confirm - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	result, err := h.service.Confirm(r.Context(), actor, bookingID)
	if err != nil {
		if handlers.IsInternal(err) {
			h.logger.Error("POST /bookings/{id}/confirm - Failed to confirm booking: booking_id=%d, error=%v", bookingID, err)
		} else {
			h.logger.Warn("POST /bookings/{id}/confirm - Rejected: booking_id=%d, user_id=%d, reason=%v", bookingID, actor.UserID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /bookings/{id}/confirm - Booking confirmed: booking_id=%d, status=%s", bookingID, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
