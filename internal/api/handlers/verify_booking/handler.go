package verify_booking

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
)

const msgMissingToken = "verification token is required"

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

// Handle POST /api/v1/bookings/verify/{token}
// Публичный маршрут: токен из письма сам по себе подтверждает владельца
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(mux.Vars(r)["token"])
	if token == "" {
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	booking, err := h.service.VerifyByToken(r.Context(), token)
	if err != nil {
		if handlers.IsInternal(err) {
			h.logger.Error("POST /bookings/verify/{token} - Failed to verify booking: error=%v", err)
		} else {
			h.logger.Warn("POST /bookings/verify/{token} - Rejected: reason=%v", err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /bookings/verify/{token} - Booking verified: booking_id=%d, status=%s", booking.ID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
