package llm

import (
	"strings"
	"testing"

	"github.com/ternarybob/respondeo/internal/common"
)

func TestNewLLMServiceRejectsUnknownProvider(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.LLM.DefaultProvider = "llama"

	if _, err := NewLLMService(cfg, common.GetLogger()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewLLMServiceRequiresClaudeAPIKey(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.LLM.DefaultProvider = common.LLMProviderClaude
	cfg.Claude.APIKey = ""

	_, err := NewLLMService(cfg, common.GetLogger())
	if err == nil {
		t.Fatal("expected error when Claude API key is missing")
	}
	if !strings.Contains(err.Error(), "API key") {
		t.Errorf("expected API key error, got: %v", err)
	}
}

func TestNewClaudeServiceRejectsBadTimeout(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Claude.APIKey = "test-key"
	cfg.Claude.Timeout = "not-a-duration"

	if _, err := NewClaudeService(&cfg.Claude, common.GetLogger()); err == nil {
		t.Fatal("expected error for invalid timeout duration")
	}
}

func TestClaudeServiceProvider(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Claude.APIKey = "test-key"

	svc, err := NewClaudeService(&cfg.Claude, common.GetLogger())
	if err != nil {
		t.Fatalf("NewClaudeService failed: %v", err)
	}
	defer svc.Close()

	if got := svc.Provider(); got != "claude" {
		t.Errorf("Provider() = %q, want %q", got, "claude")
	}
}
