package complete_trip

import (
	"net/http"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/middleware"
	completeTrip "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/complete_trip"
)

const (
	msgInvalidBookingID   = "invalid booking id"
	msgInvalidRequestBody = "invalid request body"
	msgUnauthorized       = "authentication required"
)

type Handler struct {
	useCase CompleteTripUseCase
	logger  Logger
}

func NewHandler(useCase CompleteTripUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/complete - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req CompleteTripRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/complete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(&req); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), &completeTrip.Request{
		Actor:       actor,
		BookingID:   bookingID,
		EndOdometer: req.EndOdometer,
		DamageFee:   req.DamageFee,
		ExtraKmFee:  req.ExtraKmFee,
	})
	if err != nil {
		if handlers.IsInternal(err) {
			h.logger.Error("POST /bookings/{id}/complete - Failed to complete trip: booking_id=%d, error=%v", bookingID, err)
		} else {
			h.logger.Warn("POST /bookings/{id}/complete - Rejected: booking_id=%d, staff_id=%d, reason=%v", bookingID, actor.UserID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /bookings/{id}/complete - Trip completed: booking_id=%d, car_id=%d", bookingID, result.Booking.CarID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
