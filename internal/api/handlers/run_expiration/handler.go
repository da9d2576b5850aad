package run_expiration

import (
	"errors"
	"net/http"

	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/scheduler"
)

type Handler struct {
	scheduler Scheduler
	logger    Logger
}

func NewHandler(scheduler Scheduler, logger Logger) *Handler {
	return &Handler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// Handle POST /api/v1/admin/expiration/run
// Запускает проходы синхронно. Частичный сбой возвращается в отчете со статусом 200
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	report, err := h.scheduler.RunNow(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrAlreadyRunning):
			h.logger.Warn("POST /admin/expiration/run - Sweep already running")
			handlers.RespondDomainError(w, err)
			return

		case report == nil:
			h.logger.Error("POST /admin/expiration/run - Sweep failed: %v", err)
			handlers.RespondInternalError(w)
			return

		default:
			h.logger.Warn("POST /admin/expiration/run - Some sweeps failed: %v", err)
		}
	}

	h.logger.Info("POST /admin/expiration/run - Sweep finished: pending=%d, unpaid=%d, drafts=%d, refunded=%d",
		len(report.PendingExpired), len(report.UnpaidCancelled), report.DraftsDeleted, len(report.Refunded))
	handlers.RespondJSON(w, http.StatusOK, report)
}
