package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// RetrievalService answers "which stored chunks are relevant to this query".
type RetrievalService interface {
	// Retrieve embeds the query, searches the vector store, and validates the
	// results. The returned result always carries validation flags and
	// metrics, even when the chunk list is empty. An empty or whitespace-only
	// query fails before any network call.
	Retrieve(ctx context.Context, query string, topK int) (*models.RetrievalResult, error)
}
