package llm

import (
	"errors"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"429 status", errors.New("Error 429, Message: quota exceeded"), true},
		{"resource exhausted", errors.New("Status: RESOURCE_EXHAUSTED"), true},
		{"quota message", errors.New("quota limit reached for model"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"nil error", nil, 0},
		{"no delay in message", errors.New("Error 429"), 0},
		{
			"please retry format",
			errors.New("Error 429, Message: rate limited. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED"),
			time.Duration(45.387061394 * float64(time.Second)),
		},
		{
			"retryDelay format",
			errors.New("rate limited, retryDelay: 30s"),
			30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRetryDelay(tt.err); got != tt.want {
				t.Errorf("ExtractRetryDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	// First attempt with no API delay uses the initial backoff.
	if got := cfg.CalculateBackoff(0, 0); got != cfg.InitialBackoff {
		t.Errorf("attempt 0 backoff = %v, want %v", got, cfg.InitialBackoff)
	}

	// API-provided delay becomes the base plus buffer.
	if got := cfg.CalculateBackoff(0, 20*time.Second); got != 25*time.Second {
		t.Errorf("api delay backoff = %v, want 25s", got)
	}

	// Backoff is capped at MaxBackoff for later attempts.
	if got := cfg.CalculateBackoff(5, 0); got != cfg.MaxBackoff {
		t.Errorf("capped backoff = %v, want %v", got, cfg.MaxBackoff)
	}
}
