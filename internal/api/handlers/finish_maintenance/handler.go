package finish_maintenance

import (
	"net/http"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/middleware"
)

const (
	msgInvalidCarID = "invalid car id"
	msgUnauthorized = "authentication required"
)

// CarStatusResponse HTTP response model
type CarStatusResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type Handler struct {
	service CarService
	logger  Logger
}

func NewHandler(service CarService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/cars/{carId}/finish-maintenance
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	carID, err := handlers.PathID(r, "carId")
	if err != nil {
		h.logger.Warn("POST /cars/{id}/finish-maintenance - Invalid car ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCarID)
		return
	}

	car, err := h.service.FinishMaintenance(r.Context(), actor, carID)
	if err != nil {
		if handlers.IsInternal(err) {
			h.logger.Error("POST /cars/{id}/finish-maintenance - Failed: car_id=%d, error=%v", carID, err)
		} else {
			h.logger.Warn("POST /cars/{id}/finish-maintenance - Rejected: car_id=%d, staff_id=%d, reason=%v", carID, actor.UserID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /cars/{id}/finish-maintenance - Car available again: car_id=%d", carID)
	handlers.RespondJSON(w, http.StatusOK, CarStatusResponse{ID: car.ID, Status: string(car.Status)})
}
