package models

import (
	"fmt"
	"time"
)

// DocumentChunk is the unit of ingestion: one contiguous slice of a source
// document together with its embedding vector. Chunks are content-addressed
// into the vector store and are never mutated after upsert; re-ingesting a
// URL writes new points rather than updating old ones.
type DocumentChunk struct {
	// Identity
	ID        string `json:"id"`         // Point ID (UUID), assigned at store time
	SourceURL string `json:"source_url"` // URL the chunk was extracted from

	// Content
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"` // Length must equal the collection dimension

	// Position within the source document
	ChunkIndex  int `json:"chunk_index"`  // 0-based, contiguous across the document
	TotalChunks int `json:"total_chunks"` // Same value on every chunk of the document

	// Metadata
	CreatedAt time.Time              `json:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"` // source_domain, title, etc.
}

// Validate checks the positional invariants of a chunk before storage.
func (c *DocumentChunk) Validate() error {
	if c.SourceURL == "" {
		return fmt.Errorf("chunk has no source URL")
	}
	if c.Content == "" {
		return fmt.Errorf("chunk %d from %s has empty content", c.ChunkIndex, c.SourceURL)
	}
	if c.TotalChunks <= 0 {
		return fmt.Errorf("chunk %d from %s has invalid total_chunks %d", c.ChunkIndex, c.SourceURL, c.TotalChunks)
	}
	if c.ChunkIndex < 0 || c.ChunkIndex >= c.TotalChunks {
		return fmt.Errorf("chunk index %d out of range [0,%d) for %s", c.ChunkIndex, c.TotalChunks, c.SourceURL)
	}
	return nil
}

// RetrievedChunk is a search hit: a stored chunk plus its similarity score.
// Instances are transient query-side values and are never written back.
type RetrievedChunk struct {
	ID          string                 `json:"id"`
	Content     string                 `json:"content"`
	Score       float32                `json:"score"`
	SourceURL   string                 `json:"source_url"`
	ChunkIndex  int                    `json:"chunk_index"`
	TotalChunks int                    `json:"total_chunks"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// CollectionInfo describes the vector collection backing the chunk store.
type CollectionInfo struct {
	Name       string `json:"name"`
	VectorSize int    `json:"vector_size"`
	Distance   string `json:"distance"`
	PointCount int64  `json:"point_count"`
}
