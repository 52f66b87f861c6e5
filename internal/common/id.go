package common

import (
	"github.com/google/uuid"
)

// NewChunkID generates a unique vector point ID for a document chunk.
// Qdrant requires point IDs to be UUIDs or unsigned integers.
func NewChunkID() string {
	return uuid.New().String()
}
