package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for chat completion against a language
// model provider. Implementations wrap cloud APIs (Gemini, Claude) behind an
// identical contract so the agent never knows which provider answers.
type LLMService interface {
	// Chat generates a completion response based on the conversation history.
	// The messages slice should contain the full conversation context
	// including system prompts, user messages, and previous assistant
	// responses.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the provider is operational and can handle
	// requests. For cloud services this checks API connectivity and
	// authentication.
	HealthCheck(ctx context.Context) error

	// Provider returns the provider name ("gemini" or "claude").
	Provider() string

	// Close releases resources and performs cleanup operations.
	Close() error
}
