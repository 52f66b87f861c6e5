package server

import (
	"net/http"
	"time"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/handlers"
	"github.com/ternarybob/respondeo/internal/models"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Query
	mux.HandleFunc("/api/query", s.app.QueryHandler.HandleQuery)

	// Ingestion
	mux.HandleFunc("/api/ingest", s.app.IngestHandler.HandleIngest)

	// Jobs
	mux.HandleFunc("/api/jobs", s.app.JobsHandler.HandleList)
	mux.HandleFunc("/api/jobs/", s.app.JobsHandler.HandleGet)

	// Scheduler
	mux.HandleFunc("/api/scheduler/trigger", s.app.SchedulerHandler.HandleTrigger)

	// System
	mux.HandleFunc("/api/health", s.app.StatusHandler.HandleHealth)
	mux.HandleFunc("/api/status", s.app.StatusHandler.HandleStatus)
	mux.HandleFunc("/api/version", s.versionHandler)

	// Everything else stays on the uniform JSON error body
	mux.HandleFunc("/", notFoundHandler)

	return mux
}

// versionHandler handles GET /api/version
func (s *Server) versionHandler(w http.ResponseWriter, r *http.Request) {
	if !handlers.RequireMethod(w, r, http.MethodGet) {
		return
	}

	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":   common.GetVersion(),
		"build":     common.GetBuild(),
		"timestamp": time.Now().UTC(),
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, models.ErrCodeBadRequest, "not found", nil)
}
