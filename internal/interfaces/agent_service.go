package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// AgentAnswer is the result of one question/answer turn.
type AgentAnswer struct {
	// Response is the generated answer text (markdown).
	Response string

	// Sources lists the distinct source URLs of the chunks the answer was
	// grounded on, in first-seen order.
	Sources []string

	// Chunks holds the retrieved chunks that formed the prompt context.
	Chunks []models.RetrievedChunk

	// Metrics carries retrieval timing and volume figures.
	Metrics models.RetrievalMetrics
}

// AgentService turns a question into a grounded answer. An instance owns a
// bounded conversation history; concurrent turns against the same instance
// are safe but interleave their history entries in completion order.
type AgentService interface {
	// Answer retrieves relevant chunks for the question, assembles the
	// grounding prompt, and generates a response. topK <= 0 selects the
	// configured default.
	Answer(ctx context.Context, question string, topK int) (*AgentAnswer, error)

	// ResetHistory clears the conversation history.
	ResetHistory()

	// HealthCheck verifies the generation provider is reachable.
	HealthCheck(ctx context.Context) error
}
