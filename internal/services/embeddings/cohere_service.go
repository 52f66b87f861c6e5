// -----------------------------------------------------------------------
// Cohere Embedding Service - REST client for the Cohere embed API
// -----------------------------------------------------------------------

package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// Embedding intents. Cohere v3 models produce different vectors for stored
// documents versus search queries.
const (
	inputTypeDocument = "search_document"
	inputTypeQuery    = "search_query"
)

// Service implements EmbeddingService against the Cohere REST API.
//
// Failure policy is asymmetric: document batches that fail after retries are
// replaced with zero vectors so ingestion alignment survives (the chunks are
// correctable by re-ingesting), while query embedding failures propagate
// because a zero query vector would silently return arbitrary results.
type Service struct {
	cfg    common.CohereConfig
	client *http.Client
	logger arbor.ILogger
}

// NewService creates a Cohere embedding client.
func NewService(cfg common.CohereConfig, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedDocuments embeds texts for ingestion in batches, preserving input
// order. A batch that fails even after the compatibility fallback yields zero
// vectors of the collection dimension instead of aborting the run.
func (s *Service) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		batchVectors, err := s.embedWithFallback(ctx, batch, inputTypeDocument)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Error().Err(err).
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Msg("Embedding batch failed, substituting zero vectors")
			batchVectors = make([][]float32, len(batch))
			for i := range batchVectors {
				batchVectors[i] = make([]float32, s.cfg.Dimension)
			}
		}
		vectors = append(vectors, batchVectors...)
	}

	return vectors, nil
}

// EmbedQuery embeds a search query. Failures propagate.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("query text cannot be empty")
	}

	vectors, err := s.embedWithFallback(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed API returned %d vectors for 1 query", len(vectors))
	}
	return vectors[0], nil
}

// embedWithFallback calls the embed endpoint, retrying once without the
// input_type field when the first call fails. Older embed models reject the
// field.
func (s *Service) embedWithFallback(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	vectors, err := s.embed(ctx, texts, inputType)
	if err == nil {
		return vectors, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	s.logger.Warn().Err(err).
		Str("input_type", inputType).
		Msg("Embed call failed, retrying without input_type")

	return s.embed(ctx, texts, "")
}

func (s *Service) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	payload, err := json.Marshal(embedRequest{
		Texts:     texts,
		Model:     s.cfg.Model,
		InputType: inputType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v1/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read embed response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embed API returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed API returned %d vectors for %d texts", len(parsed.Embeddings), len(texts))
	}
	for i, vec := range parsed.Embeddings {
		if len(vec) != s.cfg.Dimension {
			return nil, fmt.Errorf("embed API returned %d-dim vector at index %d, collection expects %d",
				len(vec), i, s.cfg.Dimension)
		}
	}

	return parsed.Embeddings, nil
}

// ModelName returns the configured embedding model.
func (s *Service) ModelName() string { return s.cfg.Model }

// Dimension returns the configured vector dimension.
func (s *Service) Dimension() int { return s.cfg.Dimension }

// HealthCheck embeds a single short text to verify connectivity and
// credentials.
func (s *Service) HealthCheck(ctx context.Context) error {
	_, err := s.embedWithFallback(ctx, []string{"ping"}, inputTypeQuery)
	if err != nil {
		return fmt.Errorf("cohere health check failed: %w", err)
	}
	return nil
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

var _ interfaces.EmbeddingService = (*Service)(nil)
