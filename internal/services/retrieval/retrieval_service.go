// -----------------------------------------------------------------------
// Retrieval Service - query-side search with validation and retry
// -----------------------------------------------------------------------

package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Exhaustion policies for connection retries.
const (
	onExhaustedReturnEmpty = "return_empty"
	onExhaustedFail        = "fail"
)

// Service implements RetrievalService: embed the query, search the store,
// validate what came back. Connection failures are retried with exponential
// backoff; what happens when retries run out is an explicit configuration
// choice rather than a silent default.
type Service struct {
	embedder interfaces.EmbeddingService
	store    interfaces.VectorStore
	cfg      common.RetrievalConfig
	logger   arbor.ILogger
}

// NewService creates a retrieval service.
func NewService(embedder interfaces.EmbeddingService, store interfaces.VectorStore, cfg common.RetrievalConfig, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Retrieve runs one retrieval pass. Input edge cases are resolved before any
// network call: empty queries are rejected, topK <= 0 takes the default, and
// oversized topK is clamped.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) (*models.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		// Callers get a well-formed empty result alongside the error so the
		// validation failure is inspectable, not just a nil.
		err := fmt.Errorf("query cannot be empty")
		return &models.RetrievalResult{
			Query: query,
			Error: err.Error(),
		}, err
	}
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	if topK > s.cfg.MaxTopK {
		s.logger.Warn().Int("requested", topK).Int("max", s.cfg.MaxTopK).Msg("Clamping top_k")
		topK = s.cfg.MaxTopK
	}

	start := time.Now()

	chunks, err := s.searchWithRetry(ctx, query, topK)
	if err != nil {
		if isConnectionError(err) && s.cfg.OnExhaustedRetries == onExhaustedReturnEmpty {
			s.logger.Error().Err(err).Msg("Retrieval retries exhausted, returning empty result")
			return &models.RetrievalResult{
				Query: query,
				ValidationResults: models.ValidationResults{
					ConnectionSuccess: false,
				},
				Metrics: models.RetrievalMetrics{
					RetrievalTimeMs: time.Since(start).Milliseconds(),
				},
				Error: err.Error(),
			}, nil
		}
		return nil, err
	}

	validation := validateChunks(chunks)
	result := &models.RetrievalResult{
		Query:             query,
		RetrievedChunks:   chunks,
		ValidationResults: validation,
		Metrics: models.RetrievalMetrics{
			RetrievalTimeMs: time.Since(start).Milliseconds(),
			TotalChunks:     len(chunks),
		},
	}

	s.logger.Info().
		Int("chunks", len(chunks)).
		Int64("retrieval_time_ms", result.Metrics.RetrievalTimeMs).
		Bool("validated", validation.OverallValidation).
		Msg("Retrieval completed")

	return result, nil
}

// searchWithRetry embeds the query and searches the store, retrying
// connection-indicating errors with exponential backoff starting at one
// second. Other errors propagate immediately.
func (s *Service) searchWithRetry(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffDelay(attempt)
			s.logger.Warn().
				Int("attempt", attempt+1).
				Dur("backoff", wait).
				Msg("Retrying retrieval after connection error")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		chunks, err := s.searchOnce(ctx, query, topK)
		if err == nil {
			return chunks, nil
		}
		if !isConnectionError(err) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("retrieval failed after %d attempts: %w", s.cfg.MaxRetries, lastErr)
}

// backoffDelay returns the wait before retry attempt n: one second for the
// first retry, doubling after.
func backoffDelay(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
}

func (s *Service) searchOnce(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	chunks, err := s.store.Search(ctx, vector, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return chunks, nil
}

// validateChunks applies per-batch integrity checks. A single malformed chunk
// fails MetadataMatch for the whole batch; the chunks themselves are still
// returned so the caller can inspect them.
func validateChunks(chunks []models.RetrievedChunk) models.ValidationResults {
	results := models.ValidationResults{
		ConnectionSuccess: true,
		MetadataMatch:     true,
		ContentRelevance:  len(chunks) > 0,
	}

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Content) == "" {
			results.MetadataMatch = false
			break
		}
		if !strings.HasPrefix(chunk.SourceURL, "http://") && !strings.HasPrefix(chunk.SourceURL, "https://") {
			results.MetadataMatch = false
			break
		}
	}

	results.OverallValidation = results.ConnectionSuccess && results.MetadataMatch && results.ContentRelevance
	return results
}

// isConnectionError reports whether the error chain indicates the dependency
// is unreachable, as opposed to a request-level rejection.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

var _ interfaces.RetrievalService = (*Service)(nil)
