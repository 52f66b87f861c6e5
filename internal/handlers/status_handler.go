// ----- Health and status endpoints -----

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// StatusHandler serves GET /api/health and GET /api/status. Health probes
// the vector store and embedding backends; the generation provider is only
// probed on request since the check spends a completion call.
type StatusHandler struct {
	store    interfaces.VectorStore
	embedder interfaces.EmbeddingService
	agent    interfaces.AgentService
	logger   arbor.ILogger
	started  time.Time
}

func NewStatusHandler(store interfaces.VectorStore, embedder interfaces.EmbeddingService, agent interfaces.AgentService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		store:    store,
		embedder: embedder,
		agent:    agent,
		logger:   logger,
		started:  time.Now(),
	}
}

// HandleHealth reports per-component reachability. Overall status is
// "degraded" when any probed component fails. Pass ?probe=llm to include
// the generation provider.
func (h *StatusHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	components := map[string]string{}
	healthy := true

	if err := h.store.HealthCheck(ctx); err != nil {
		components["vector_store"] = err.Error()
		healthy = false
	} else {
		components["vector_store"] = "ok"
	}

	if err := h.embedder.HealthCheck(ctx); err != nil {
		components["embeddings"] = err.Error()
		healthy = false
	} else {
		components["embeddings"] = "ok"
	}

	if r.URL.Query().Get("probe") == "llm" {
		if err := h.agent.HealthCheck(ctx); err != nil {
			components["llm"] = err.Error()
			healthy = false
		} else {
			components["llm"] = "ok"
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	WriteJSON(w, code, map[string]interface{}{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}

// HandleStatus reports version, uptime, and collection figures.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	payload := map[string]interface{}{
		"version":         common.GetFullVersion(),
		"uptime_seconds":  int64(time.Since(h.started).Seconds()),
		"embedding_model": h.embedder.ModelName(),
		"timestamp":       time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if info, err := h.store.Info(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Collection info unavailable")
		payload["collection"] = map[string]interface{}{"error": err.Error()}
	} else {
		payload["collection"] = info
	}

	WriteJSON(w, http.StatusOK, payload)
}
