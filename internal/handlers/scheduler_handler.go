// ----- Manual re-ingestion trigger endpoint -----

package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// SchedulerHandler serves POST /api/scheduler/trigger. The scheduler is nil
// when disabled in config, in which case triggering is rejected.
type SchedulerHandler struct {
	scheduler interfaces.SchedulerService
	logger    arbor.ILogger
}

func NewSchedulerHandler(scheduler interfaces.SchedulerService, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// HandleTrigger starts a re-ingestion cycle immediately. The cycle runs in
// the background; the response only acknowledges the trigger.
func (h *SchedulerHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.scheduler == nil {
		WriteError(w, http.StatusConflict, models.ErrCodeSchedulerDisabled, "scheduler is not enabled", nil)
		return
	}

	h.scheduler.TriggerNow()
	h.logger.Info().Msg("Re-ingestion triggered via API")

	response := map[string]interface{}{
		"triggered": true,
		"timestamp": time.Now().UTC(),
	}
	if next := h.scheduler.NextRun(); !next.IsZero() {
		response["next_scheduled_run"] = next.UTC()
	}
	WriteJSON(w, http.StatusAccepted, response)
}
