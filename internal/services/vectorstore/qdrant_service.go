// -----------------------------------------------------------------------
// Qdrant Vector Store - REST client for collection and point operations
// -----------------------------------------------------------------------

package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Payload fields carrying keyword indexes for filtered lookups.
var indexedPayloadFields = []string{"url", "source_domain"}

// Service implements VectorStore against the Qdrant REST API. The collection
// is created lazily with cosine distance; its dimension is fixed for the
// collection's lifetime.
type Service struct {
	cfg       common.QdrantConfig
	dimension int
	client    *http.Client
	logger    arbor.ILogger

	mu      sync.Mutex
	ensured bool
}

// NewService creates a Qdrant client for a collection of the given dimension.
func NewService(cfg common.QdrantConfig, dimension int, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		cfg:       cfg,
		dimension: dimension,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// EnsureCollection creates the collection and its payload indexes if absent.
// Idempotent; the success result is cached so repeated calls are free.
func (s *Service) EnsureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}

	status, _, err := s.do(ctx, http.MethodGet, "/collections/"+s.cfg.Collection, nil)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.cfg.Collection, err)
	}
	if status == http.StatusOK {
		s.ensured = true
		return nil
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("unexpected status %d checking collection %s", status, s.cfg.Collection)
	}

	create := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	status, body, err := s.do(ctx, http.MethodPut, "/collections/"+s.cfg.Collection, create)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.cfg.Collection, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("collection create returned status %d: %s", status, body)
	}

	for _, field := range indexedPayloadFields {
		index := map[string]interface{}{
			"field_name":   field,
			"field_schema": "keyword",
		}
		status, body, err := s.do(ctx, http.MethodPut, "/collections/"+s.cfg.Collection+"/index", index)
		if err != nil {
			return fmt.Errorf("failed to create payload index %s: %w", field, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("payload index %s returned status %d: %s", field, status, body)
		}
	}

	s.logger.Info().
		Str("collection", s.cfg.Collection).
		Int("dimension", s.dimension).
		Msg("Created vector collection")

	s.ensured = true
	return nil
}

type upsertPoint struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

// Upsert writes chunks in batches. A failed batch aborts the remainder;
// earlier batches stay written. IDs are assigned here for chunks that lack
// one.
func (s *Service) Upsert(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return err
	}

	for start := 0; start < len(chunks); start += s.cfg.UpsertBatchSize {
		end := start + s.cfg.UpsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		points := make([]upsertPoint, 0, end-start)
		for i := start; i < end; i++ {
			chunk := chunks[i]
			if err := chunk.Validate(); err != nil {
				return fmt.Errorf("refusing to store invalid chunk: %w", err)
			}
			if len(chunk.Embedding) != s.dimension {
				return fmt.Errorf("chunk %d from %s has %d-dim embedding, collection expects %d",
					chunk.ChunkIndex, chunk.SourceURL, len(chunk.Embedding), s.dimension)
			}
			id := chunk.ID
			if id == "" {
				id = common.NewChunkID()
			}
			points = append(points, upsertPoint{
				ID:      id,
				Vector:  chunk.Embedding,
				Payload: chunkPayload(chunk),
			})
		}

		body := map[string]interface{}{"points": points}
		status, respBody, err := s.do(ctx, http.MethodPut, "/collections/"+s.cfg.Collection+"/points?wait=true", body)
		if err != nil {
			return fmt.Errorf("upsert batch at offset %d failed: %w", start, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("upsert batch at offset %d returned status %d: %s", start, status, respBody)
		}

		s.logger.Debug().
			Int("offset", start).
			Int("points", len(points)).
			Msg("Upserted point batch")
	}

	return nil
}

// chunkPayload builds the stored payload for a chunk. created_at is RFC3339.
func chunkPayload(chunk models.DocumentChunk) map[string]interface{} {
	createdAt := chunk.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	payload := map[string]interface{}{
		"url":          chunk.SourceURL,
		"content":      chunk.Content,
		"chunk_index":  chunk.ChunkIndex,
		"total_chunks": chunk.TotalChunks,
		"created_at":   createdAt.Format(time.RFC3339),
	}
	if len(chunk.Metadata) > 0 {
		payload["metadata"] = chunk.Metadata
	}
	if domain, ok := chunk.Metadata["source_domain"]; ok {
		payload["source_domain"] = domain
	}
	return payload
}

type searchResponse struct {
	Result []searchHit `json:"result"`
}

type searchHit struct {
	ID      interface{}            `json:"id"`
	Score   float32                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// Search returns up to limit chunks by descending similarity. A non-empty
// filter restricts hits by exact payload match against the indexed keyword
// fields (url, source_domain).
func (s *Service) Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]models.RetrievedChunk, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query vector has dim %d, collection expects %d", len(vector), s.dimension)
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if len(filter) > 0 {
		must := make([]map[string]interface{}, 0, len(filter))
		for key, value := range filter {
			must = append(must, map[string]interface{}{
				"key":   key,
				"match": map[string]interface{}{"value": value},
			})
		}
		body["filter"] = map[string]interface{}{"must": must}
	}
	status, respBody, err := s.do(ctx, http.MethodPost, "/collections/"+s.cfg.Collection+"/points/search", body)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d: %s", status, respBody)
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(parsed.Result))
	for _, hit := range parsed.Result {
		chunks = append(chunks, hitToChunk(hit))
	}
	return chunks, nil
}

func hitToChunk(hit searchHit) models.RetrievedChunk {
	chunk := models.RetrievedChunk{
		ID:    fmt.Sprintf("%v", hit.ID),
		Score: hit.Score,
	}
	if hit.Payload == nil {
		return chunk
	}
	if v, ok := hit.Payload["content"].(string); ok {
		chunk.Content = v
	}
	if v, ok := hit.Payload["url"].(string); ok {
		chunk.SourceURL = v
	}
	if v, ok := hit.Payload["chunk_index"].(float64); ok {
		chunk.ChunkIndex = int(v)
	}
	if v, ok := hit.Payload["total_chunks"].(float64); ok {
		chunk.TotalChunks = int(v)
	}
	if v, ok := hit.Payload["metadata"].(map[string]interface{}); ok {
		chunk.Metadata = v
	}
	return chunk
}

type collectionInfoResponse struct {
	Result struct {
		PointsCount int64 `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// Info returns collection metadata.
func (s *Service) Info(ctx context.Context) (*models.CollectionInfo, error) {
	status, body, err := s.do(ctx, http.MethodGet, "/collections/"+s.cfg.Collection, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection info: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("collection info returned status %d: %s", status, body)
	}

	var parsed collectionInfoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode collection info: %w", err)
	}

	return &models.CollectionInfo{
		Name:       s.cfg.Collection,
		VectorSize: parsed.Result.Config.Params.Vectors.Size,
		Distance:   parsed.Result.Config.Params.Vectors.Distance,
		PointCount: parsed.Result.PointsCount,
	}, nil
}

// HealthCheck verifies the Qdrant endpoint responds.
func (s *Service) HealthCheck(ctx context.Context) error {
	status, _, err := s.do(ctx, http.MethodGet, "/collections", nil)
	if err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant health check returned status %d", status)
	}
	return nil
}

// do performs one JSON request and returns status code and raw body.
func (s *Service) do(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.URL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024*1024))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

var _ interfaces.VectorStore = (*Service)(nil)
