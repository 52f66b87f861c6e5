// ----- Query endpoint: question in, grounded answer out -----

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// QueryHandler serves POST /api/query. Concurrent queries are bounded by a
// semaphore so a slow generation cannot stall every other request.
type QueryHandler struct {
	agent    interfaces.AgentService
	config   common.ServerConfig
	validate *validator.Validate
	markdown goldmark.Markdown
	limiter  chan struct{}
	logger   arbor.ILogger
}

func NewQueryHandler(agent interfaces.AgentService, config common.ServerConfig, logger arbor.ILogger) *QueryHandler {
	workers := config.MaxConcurrentQueries
	if workers <= 0 {
		workers = 1
	}

	return &QueryHandler{
		agent:    agent,
		config:   config,
		validate: validator.New(),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		),
		limiter: make(chan struct{}, workers),
		logger:  logger,
	}
}

// HandleQuery answers a question against the knowledge base.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "invalid JSON body", nil)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid query request", validationDetails(err))
		return
	}

	ctx := r.Context()
	if h.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.QueryTimeout)
		defer cancel()
	}

	select {
	case h.limiter <- struct{}{}:
		defer func() { <-h.limiter }()
	case <-ctx.Done():
		WriteError(w, http.StatusGatewayTimeout, models.ErrCodeRequestTimeout, "query queue wait exceeded the request deadline", nil)
		return
	}

	start := time.Now()
	answer, err := h.agent.Answer(ctx, req.Query, req.TopK)
	if err != nil {
		status, code := classifyQueryError(err)
		h.logger.Warn().Err(err).Str("error_code", code).Dur("elapsed", time.Since(start)).Msg("Query failed")
		WriteError(w, status, code, err.Error(), nil)
		return
	}

	response := answer.Response
	format := req.Format
	if format == "" {
		format = "markdown"
	}
	if format == "html" {
		var buf bytes.Buffer
		if convErr := h.markdown.Convert([]byte(answer.Response), &buf); convErr != nil {
			h.logger.Warn().Err(convErr).Msg("Markdown to HTML conversion failed, returning markdown")
			format = "markdown"
		} else {
			response = buf.String()
		}
	}

	h.logger.Info().
		Int("sources", len(answer.Sources)).
		Int("chunks", len(answer.Chunks)).
		Dur("elapsed", time.Since(start)).
		Msg("Query answered")

	WriteJSON(w, http.StatusOK, models.QueryResponse{
		Response: response,
		Sources:  answer.Sources,
		Metadata: map[string]interface{}{
			"format":            format,
			"total_chunks":      answer.Metrics.TotalChunks,
			"retrieval_time_ms": answer.Metrics.RetrievalTimeMs,
		},
		Timestamp: time.Now().UTC(),
	})
}

// classifyQueryError maps a pipeline failure to an HTTP status and API error
// code. Deadline expiry is a timeout; transport-level failures reaching the
// embedding, vector store, or generation backends are reported as the agent
// being unavailable.
func classifyQueryError(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, models.ErrCodeRequestTimeout
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection refused", "no such host", "dial tcp", "unavailable", "unreachable"} {
		if strings.Contains(msg, marker) {
			return http.StatusServiceUnavailable, models.ErrCodeAgentUnavailable
		}
	}

	return http.StatusInternalServerError, models.ErrCodeInternal
}

// validationDetails flattens validator errors into a field -> constraint map.
func validationDetails(err error) map[string]interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
