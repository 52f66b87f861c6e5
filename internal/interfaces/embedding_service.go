package interfaces

import "context"

// EmbeddingService generates vector embeddings
type EmbeddingService interface {
	// Embed document chunks for ingestion. Order and length of the result
	// match the input texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// Embed a search query (uses a different embedding intent than documents)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Get model information
	ModelName() string
	Dimension() int

	// Check if service is available
	HealthCheck(ctx context.Context) error
}
