package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

type stubRetrieval struct {
	result *models.RetrievalResult
	err    error
	calls  int
}

func (s *stubRetrieval) Retrieve(ctx context.Context, query string, topK int) (*models.RetrievalResult, error) {
	s.calls++
	return s.result, s.err
}

type stubLLM struct {
	response string
	err      error
	calls    [][]interfaces.Message
}

func (s *stubLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return "", s.err
	}
	if s.response != "" {
		return s.response, nil
	}
	return fmt.Sprintf("answer %d", len(s.calls)), nil
}

func (s *stubLLM) HealthCheck(ctx context.Context) error { return s.err }

func (s *stubLLM) Provider() string { return "stub" }

func (s *stubLLM) Close() error { return nil }

func retrievalResultWith(chunks ...models.RetrievedChunk) *models.RetrievalResult {
	return &models.RetrievalResult{
		RetrievedChunks: chunks,
		Metrics:         models.RetrievalMetrics{TotalChunks: len(chunks)},
	}
}

func testChunk(url, content string) models.RetrievedChunk {
	return models.RetrievedChunk{
		ID:        "c1",
		Content:   content,
		Score:     0.9,
		SourceURL: url,
	}
}

func newTestService(retrieval *stubRetrieval, llm *stubLLM) *Service {
	cfg := common.AgentConfig{HistorySize: 2, MaxContextContent: 2000, IncludeScores: true}
	return NewService(retrieval, llm, cfg, common.GetLogger())
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	retrieval := &stubRetrieval{}
	llm := &stubLLM{}
	svc := newTestService(retrieval, llm)

	if _, err := svc.Answer(context.Background(), "   ", 5); err == nil {
		t.Fatal("expected error for empty question")
	}
	if retrieval.calls != 0 {
		t.Errorf("expected no retrieval calls, got %d", retrieval.calls)
	}
	if len(llm.calls) != 0 {
		t.Errorf("expected no LLM calls, got %d", len(llm.calls))
	}
}

func TestAnswerGroundsPromptInRetrievedContent(t *testing.T) {
	retrieval := &stubRetrieval{result: retrievalResultWith(
		testChunk("https://docs.example.com/a", "alpha content"),
		testChunk("https://docs.example.com/b", "beta content"),
	)}
	llm := &stubLLM{response: "grounded answer"}
	svc := newTestService(retrieval, llm)

	answer, err := svc.Answer(context.Background(), "what is alpha?", 5)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if answer.Response != "grounded answer" {
		t.Errorf("unexpected response: %q", answer.Response)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(answer.Sources))
	}

	messages := llm.calls[0]
	if messages[0].Role != "system" {
		t.Fatalf("expected system message first, got role %q", messages[0].Role)
	}
	system := messages[0].Content
	if !strings.Contains(system, "alpha content") || !strings.Contains(system, "beta content") {
		t.Error("system prompt missing retrieved content")
	}
	if !strings.Contains(system, "https://docs.example.com/a") {
		t.Error("system prompt missing source URL")
	}
	last := messages[len(messages)-1]
	if last.Role != "user" || last.Content != "what is alpha?" {
		t.Errorf("expected question as final user message, got %+v", last)
	}
}

func TestAnswerDeduplicatesSources(t *testing.T) {
	retrieval := &stubRetrieval{result: retrievalResultWith(
		testChunk("https://docs.example.com/a", "chunk one"),
		testChunk("https://docs.example.com/a", "chunk two"),
		testChunk("https://docs.example.com/b", "chunk three"),
	)}
	svc := newTestService(retrieval, &stubLLM{})

	answer, err := svc.Answer(context.Background(), "question", 5)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(answer.Sources) != 2 {
		t.Errorf("expected 2 distinct sources, got %v", answer.Sources)
	}
	if answer.Sources[0] != "https://docs.example.com/a" {
		t.Errorf("expected first-seen order, got %v", answer.Sources)
	}
}

func TestAnswerBoundsConversationHistory(t *testing.T) {
	retrieval := &stubRetrieval{result: retrievalResultWith(
		testChunk("https://docs.example.com/a", "content"),
	)}
	llm := &stubLLM{}
	svc := newTestService(retrieval, llm) // HistorySize: 2

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if _, err := svc.Answer(ctx, fmt.Sprintf("question %d", i), 5); err != nil {
			t.Fatalf("Answer %d failed: %v", i, err)
		}
	}

	// Fourth call carries only the last 2 exchanges: system + 2*(user+assistant) + question.
	messages := llm.calls[3]
	if len(messages) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(messages))
	}
	if !strings.Contains(messages[1].Content, "question 1") {
		t.Errorf("expected oldest retained turn to be question 1, got %q", messages[1].Content)
	}
	if messages[2].Role != "assistant" {
		t.Errorf("expected assistant turn after user turn, got %q", messages[2].Role)
	}
}

func TestResetHistoryClearsContext(t *testing.T) {
	retrieval := &stubRetrieval{result: retrievalResultWith(
		testChunk("https://docs.example.com/a", "content"),
	)}
	llm := &stubLLM{}
	svc := newTestService(retrieval, llm)

	ctx := context.Background()
	if _, err := svc.Answer(ctx, "first", 5); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	svc.ResetHistory()
	if _, err := svc.Answer(ctx, "second", 5); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	// After reset the second call carries no prior turns: system + question.
	if len(llm.calls[1]) != 2 {
		t.Errorf("expected 2 messages after reset, got %d", len(llm.calls[1]))
	}
}

func TestAnswerWithDegradedRetrievalStillResponds(t *testing.T) {
	result := retrievalResultWith()
	result.Error = "vector store unreachable"
	retrieval := &stubRetrieval{result: result}
	llm := &stubLLM{response: "the knowledge base has no relevant content"}
	svc := newTestService(retrieval, llm)

	answer, err := svc.Answer(context.Background(), "question", 5)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(answer.Chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(answer.Chunks))
	}
	if !strings.Contains(llm.calls[0][0].Content, "No context documents") {
		t.Error("expected empty-context note in system prompt")
	}
}

func TestBuildContextTextTruncatesContent(t *testing.T) {
	chunk := testChunk("https://docs.example.com/a", strings.Repeat("x", 100))
	text := buildContextText([]models.RetrievedChunk{chunk}, 50, false)

	if !strings.Contains(text, strings.Repeat("x", 50)+"...") {
		t.Error("expected truncated content with ellipsis")
	}
	if strings.Contains(text, strings.Repeat("x", 60)) {
		t.Error("content not truncated")
	}
	if strings.Contains(text, "Relevance:") {
		t.Error("scores rendered despite include_scores=false")
	}
}

// staticRetrieval returns a fresh empty result on every call without any
// shared mutable state, safe for concurrent turns.
type staticRetrieval struct{}

func (s *staticRetrieval) Retrieve(ctx context.Context, query string, topK int) (*models.RetrievalResult, error) {
	return retrievalResultWith(), nil
}

// barrierLLM holds every Chat call until the expected number are in flight
// at once. If callers are serialized the barrier never opens and each call
// fails on its context deadline.
type barrierLLM struct {
	mu       sync.Mutex
	inFlight int
	expected int
	ready    chan struct{}
}

func (b *barrierLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	b.mu.Lock()
	b.inFlight++
	if b.inFlight == b.expected {
		close(b.ready)
	}
	b.mu.Unlock()

	select {
	case <-b.ready:
		return "ok", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *barrierLLM) HealthCheck(ctx context.Context) error { return nil }

func (b *barrierLLM) Provider() string { return "barrier" }

func (b *barrierLLM) Close() error { return nil }

func TestAnswerOverlapsConcurrentTurns(t *testing.T) {
	const turns = 4
	llm := &barrierLLM{expected: turns, ready: make(chan struct{})}
	cfg := common.AgentConfig{HistorySize: turns, MaxContextContent: 2000}
	svc := NewService(&staticRetrieval{}, llm, cfg, common.GetLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errc := make(chan error, turns)
	for i := 0; i < turns; i++ {
		go func(n int) {
			_, err := svc.Answer(ctx, fmt.Sprintf("question %d", n), 1)
			errc <- err
		}(i)
	}

	for i := 0; i < turns; i++ {
		if err := <-errc; err != nil {
			t.Fatalf("concurrent answers must overlap, got: %v", err)
		}
	}

	svc.mu.Lock()
	recorded := len(svc.history)
	svc.mu.Unlock()
	if recorded != turns {
		t.Errorf("expected %d history entries, got %d", turns, recorded)
	}
}
