package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// VectorStore persists document chunks and serves similarity search.
type VectorStore interface {
	// EnsureCollection creates the backing collection and its payload indexes
	// if they do not exist. Idempotent; safe to call before every write.
	EnsureCollection(ctx context.Context) error

	// Upsert writes chunks in batches. A failed batch aborts the remainder
	// and returns the error; previously written batches are not rolled back.
	Upsert(ctx context.Context, chunks []models.DocumentChunk) error

	// Search returns up to limit chunks ordered by descending similarity to
	// the query vector. A non-empty filter restricts hits by exact match on
	// indexed payload fields.
	Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]models.RetrievedChunk, error)

	// Info returns collection metadata including the stored point count.
	Info(ctx context.Context) (*models.CollectionInfo, error)

	// HealthCheck verifies the store is reachable.
	HealthCheck(ctx context.Context) error
}
