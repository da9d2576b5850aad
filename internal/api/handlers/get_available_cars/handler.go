package get_available_cars

import (
	"net/http"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
)

const (
	msgMissingWindow = "start and end query parameters are required"
	msgInvalidDate   = "invalid date format, expected RFC3339 or YYYY-MM-DD"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/cars/available
// Query params: start (required), end (required)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		h.logger.Warn("GET /cars/available - Missing window")
		handlers.RespondBadRequest(w, msgMissingWindow)
		return
	}

	window, err := ParseWindow(start, end)
	if err != nil {
		h.logger.Warn("GET /cars/available - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	cars, err := h.service.ListAvailableCars(r.Context(), window)
	if err != nil {
		if handlers.IsInternal(err) {
			h.logger.Error("GET /cars/available - Failed to list cars: error=%v", err)
		} else {
			h.logger.Warn("GET /cars/available - Rejected: reason=%v", err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /cars/available - Cars retrieved: count=%d", len(cars))
	handlers.RespondJSON(w, http.StatusOK, FromDomain(window, cars))
}
