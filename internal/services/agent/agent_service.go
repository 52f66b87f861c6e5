// -------------------------------------------------------------------------
// Query orchestration: retrieval, prompt assembly, answer generation
// -------------------------------------------------------------------------

package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Service implements the AgentService interface. It owns a bounded
// conversation history guarded by a mutex; only history reads and appends
// take the lock, so concurrent Answer calls overlap on the retrieval and
// generation network calls. Interleaved turns may observe each other's
// history appends in completion order.
type Service struct {
	retrieval interfaces.RetrievalService
	llm       interfaces.LLMService
	cfg       common.AgentConfig
	logger    arbor.ILogger

	mu      sync.Mutex
	history []exchange
}

// NewService creates a new agent service.
func NewService(retrieval interfaces.RetrievalService, llm interfaces.LLMService, cfg common.AgentConfig, logger arbor.ILogger) *Service {
	return &Service{
		retrieval: retrieval,
		llm:       llm,
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer retrieves relevant chunks for the question, assembles the grounding
// prompt, and generates a response. topK <= 0 selects the configured default.
func (s *Service) Answer(ctx context.Context, question string, topK int) (*interfaces.AgentAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	startTime := time.Now()
	s.logger.Debug().
		Int("question_length", len(question)).
		Int("top_k", topK).
		Msg("Processing question")

	result, err := s.retrieval.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	if result.Error != "" {
		s.logger.Warn().
			Str("retrieval_error", result.Error).
			Msg("Retrieval degraded, answering with empty context")
	}

	history := s.snapshotHistory()
	contextText := buildContextText(result.RetrievedChunks, s.cfg.MaxContextContent, s.cfg.IncludeScores)
	messages := buildMessages(question, contextText, history)

	s.logger.Debug().
		Int("context_chunks", len(result.RetrievedChunks)).
		Int("context_chars", len(contextText)).
		Int("history_turns", len(history)).
		Int("total_messages", len(messages)).
		Msg("Grounding prompt assembled")

	response, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	s.appendHistory(exchange{User: question, Assistant: response})

	answer := &interfaces.AgentAnswer{
		Response: response,
		Sources:  collectSources(result.RetrievedChunks),
		Chunks:   result.RetrievedChunks,
		Metrics:  result.Metrics,
	}

	s.logger.Info().
		Int("context_chunks", len(result.RetrievedChunks)).
		Int("sources", len(answer.Sources)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Question answered")

	return answer, nil
}

// ResetHistory clears the conversation history.
func (s *Service) ResetHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.logger.Debug().Msg("Conversation history cleared")
}

// HealthCheck verifies the generation provider is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.llm.HealthCheck(ctx); err != nil {
		return fmt.Errorf("LLM service unhealthy: %w", err)
	}
	return nil
}

// snapshotHistory copies the current history under the lock so prompt
// assembly can run without holding it.
func (s *Service) snapshotHistory() []exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return nil
	}
	history := make([]exchange, len(s.history))
	copy(history, s.history)
	return history
}

// appendHistory records a completed exchange, dropping the oldest entries
// beyond the configured window.
func (s *Service) appendHistory(turn exchange) {
	if s.cfg.HistorySize <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turn)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
}

// collectSources returns the distinct source URLs in first-seen order.
func collectSources(chunks []models.RetrievedChunk) []string {
	seen := make(map[string]bool, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.SourceURL == "" || seen[chunk.SourceURL] {
			continue
		}
		seen[chunk.SourceURL] = true
		sources = append(sources, chunk.SourceURL)
	}
	return sources
}
