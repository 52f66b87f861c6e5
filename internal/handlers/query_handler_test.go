package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

type stubAgent struct {
	answer *interfaces.AgentAnswer
	err    error

	calls int

	healthErr error
}

func (s *stubAgent) Answer(ctx context.Context, question string, topK int) (*interfaces.AgentAnswer, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func (s *stubAgent) ResetHistory() {}

func (s *stubAgent) HealthCheck(ctx context.Context) error { return s.healthErr }

func testServerConfig() common.ServerConfig {
	return common.ServerConfig{
		MaxConcurrentQueries: 2,
		QueryTimeout:         5 * time.Second,
	}
}

func postQuery(t *testing.T, h *QueryHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleQuery(rec, req)
	return rec
}

func TestQueryHandlerSuccess(t *testing.T) {
	agent := &stubAgent{
		answer: &interfaces.AgentAnswer{
			Response: "Go's GC is concurrent.",
			Sources:  []string{"https://go.dev/doc/gc-guide"},
			Metrics:  models.RetrievalMetrics{RetrievalTimeMs: 12, TotalChunks: 3},
		},
	}
	h := NewQueryHandler(agent, testServerConfig(), common.GetLogger())

	rec := postQuery(t, h, `{"query":"how does the GC work?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "Go's GC is concurrent." {
		t.Errorf("unexpected response text %q", resp.Response)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "https://go.dev/doc/gc-guide" {
		t.Errorf("unexpected sources %v", resp.Sources)
	}
	if resp.Metadata["format"] != "markdown" {
		t.Errorf("expected markdown format, got %v", resp.Metadata["format"])
	}
}

func TestQueryHandlerHTMLFormat(t *testing.T) {
	agent := &stubAgent{
		answer: &interfaces.AgentAnswer{Response: "# Heading\n\nBody text."},
	}
	h := NewQueryHandler(agent, testServerConfig(), common.GetLogger())

	rec := postQuery(t, h, `{"query":"anything","format":"html"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Response, "<h1") {
		t.Errorf("expected rendered HTML heading, got %q", resp.Response)
	}
	if resp.Metadata["format"] != "html" {
		t.Errorf("expected html format, got %v", resp.Metadata["format"])
	}
}

func TestQueryHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"empty body", `{}`, models.ErrCodeValidation},
		{"blank query", `{"query":""}`, models.ErrCodeValidation},
		{"negative top_k", `{"query":"q","top_k":-1}`, models.ErrCodeValidation},
		{"bad format", `{"query":"q","format":"pdf"}`, models.ErrCodeValidation},
		{"malformed json", `{"query":`, models.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := &stubAgent{}
			h := NewQueryHandler(agent, testServerConfig(), common.GetLogger())

			rec := postQuery(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}

			var resp models.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.ErrorCode != tt.code {
				t.Errorf("expected error code %s, got %s", tt.code, resp.ErrorCode)
			}
			if agent.calls != 0 {
				t.Errorf("agent should not be called on invalid input")
			}
		})
	}
}

func TestQueryHandlerMethodNotAllowed(t *testing.T) {
	h := NewQueryHandler(&stubAgent{}, testServerConfig(), common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/query", nil)
	rec := httptest.NewRecorder()
	h.HandleQuery(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestQueryHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, models.ErrCodeRequestTimeout},
		{"wrapped deadline", errors.Join(errors.New("generate completion"), context.DeadlineExceeded), http.StatusGatewayTimeout, models.ErrCodeRequestTimeout},
		{"connection refused", errors.New("search request failed: dial tcp 127.0.0.1:6333: connect: connection refused"), http.StatusServiceUnavailable, models.ErrCodeAgentUnavailable},
		{"dns failure", errors.New("embedding request failed: no such host"), http.StatusServiceUnavailable, models.ErrCodeAgentUnavailable},
		{"generic", errors.New("something broke"), http.StatusInternalServerError, models.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewQueryHandler(&stubAgent{err: tt.err}, testServerConfig(), common.GetLogger())

			rec := postQuery(t, h, `{"query":"q"}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp models.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.ErrorCode != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.ErrorCode)
			}
		})
	}
}
