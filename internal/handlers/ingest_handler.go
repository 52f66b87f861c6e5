// ----- Ingestion endpoint -----

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// IngestHandler serves POST /api/ingest. Ingestion runs synchronously; the
// jobs endpoint reports per-URL outcomes afterwards.
type IngestHandler struct {
	ingestion interfaces.IngestionService
	validate  *validator.Validate
	logger    arbor.ILogger
}

func NewIngestHandler(ingestion interfaces.IngestionService, logger arbor.ILogger) *IngestHandler {
	return &IngestHandler{
		ingestion: ingestion,
		validate:  validator.New(),
		logger:    logger,
	}
}

// HandleIngest accepts exactly one of url, urls, or sitemap_url and runs the
// ingestion pipeline for it.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "invalid JSON body", nil)
		return
	}

	sources := 0
	if req.URL != "" {
		sources++
	}
	if len(req.URLs) > 0 {
		sources++
	}
	if req.SitemapURL != "" {
		sources++
	}
	if sources != 1 {
		WriteError(w, http.StatusBadRequest, models.ErrCodeValidation,
			"exactly one of url, urls, or sitemap_url must be provided", nil)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid ingest request", validationDetails(err))
		return
	}

	ctx := r.Context()
	var jobs []*models.ProcessingJob

	switch {
	case req.URL != "":
		job, err := h.ingestion.IngestURL(ctx, req.URL, req.Crawl, req.MaxPages)
		if job != nil {
			jobs = append(jobs, job)
		}
		if err != nil {
			h.logger.Warn().Err(err).Str("url", req.URL).Msg("Ingestion failed")
		}

	case len(req.URLs) > 0:
		jobs = h.ingestion.IngestURLs(ctx, req.URLs)

	case req.SitemapURL != "":
		var err error
		jobs, err = h.ingestion.IngestSitemap(ctx, req.SitemapURL, req.Include, req.Exclude)
		if err != nil {
			h.logger.Warn().Err(err).Str("sitemap_url", req.SitemapURL).Msg("Sitemap ingestion failed")
			WriteError(w, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error(), nil)
			return
		}
	}

	jobIDs := make([]string, 0, len(jobs))
	for _, job := range jobs {
		jobIDs = append(jobIDs, job.ID)
	}

	h.logger.Info().Int("jobs", len(jobIDs)).Msg("Ingestion run finished")

	WriteJSON(w, http.StatusOK, models.IngestResponse{
		JobIDs:    jobIDs,
		Accepted:  len(jobIDs),
		Timestamp: time.Now().UTC(),
	})
}
