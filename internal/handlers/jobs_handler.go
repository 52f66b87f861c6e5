// ----- Processing job inspection endpoints -----

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// JobsHandler serves GET /api/jobs and GET /api/jobs/{id}. Jobs are read
// from the in-memory tracker; the optional badger storage takes over for
// lookups that miss, so exported jobs survive restarts.
type JobsHandler struct {
	ingestion interfaces.IngestionService
	storage   interfaces.JobStorage // nil unless export_jobs is enabled
	logger    arbor.ILogger
}

func NewJobsHandler(ingestion interfaces.IngestionService, storage interfaces.JobStorage, logger arbor.ILogger) *JobsHandler {
	return &JobsHandler{
		ingestion: ingestion,
		storage:   storage,
		logger:    logger,
	}
}

// HandleList returns tracked jobs newest first, optionally filtered by
// status and capped by limit.
func (h *JobsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := r.URL.Query().Get("status")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, models.ErrCodeValidation, "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	jobs := h.ingestion.Jobs()
	filtered := make([]*models.ProcessingJob, 0, len(jobs))
	for _, job := range jobs {
		if status != "" && job.Status != status {
			continue
		}
		filtered = append(filtered, job)
		if limit > 0 && len(filtered) >= limit {
			break
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  filtered,
		"count": len(filtered),
	})
}

// HandleGet returns a single job by ID from the path suffix.
func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "job ID is required", nil)
		return
	}

	job := h.ingestion.Job(id)
	if job == nil && h.storage != nil {
		stored, err := h.storage.GetJob(r.Context(), id)
		if err == nil {
			job = stored
		}
	}
	if job == nil {
		WriteError(w, http.StatusNotFound, models.ErrCodeBadRequest, "job not found", map[string]interface{}{"id": id})
		return
	}

	WriteJSON(w, http.StatusOK, job)
}
