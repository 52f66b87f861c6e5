package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// NewLLMService creates the LLM service implementation for the configured
// default provider.
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := cfg.LLM.DefaultProvider
	if provider == "" {
		provider = common.LLMProviderGemini
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing LLM service")

	switch provider {
	case common.LLMProviderGemini:
		return NewGeminiService(&cfg.Gemini, logger)

	case common.LLMProviderClaude:
		return NewClaudeService(&cfg.Claude, logger)

	default:
		return nil, fmt.Errorf("invalid LLM provider '%s': must be 'gemini' or 'claude'", provider)
	}
}
