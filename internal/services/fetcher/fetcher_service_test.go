package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/respondeo/internal/common"
)

func testConfig() common.FetcherConfig {
	return common.FetcherConfig{
		RequestTimeout:      5 * time.Second,
		MaxRetries:          3,
		UserAgent:           "respondeo-test",
		MaxBodySize:         1 << 20,
		AllowedContentTypes: []string{"text/html", "application/json", "text/plain"},
	}
}

func TestValidateURL(t *testing.T) {
	s := NewService(testConfig(), false, nil)

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https allowed", "https://example.com/docs", false},
		{"http allowed", "http://example.com", false},
		{"ftp rejected", "ftp://example.com/file", true},
		{"file rejected", "file:///etc/passwd", true},
		{"localhost rejected", "http://localhost:8080/", true},
		{"loopback ip rejected", "http://127.0.0.1/", true},
		{"ipv6 loopback rejected", "http://[::1]/", true},
		{"private ip rejected", "http://192.168.1.1/admin", true},
		{"ten-dot rejected", "http://10.0.0.5/", true},
		{"link local rejected", "http://169.254.169.254/latest/meta-data", true},
		{"no host rejected", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURLAllowsLoopbackInDevelopment(t *testing.T) {
	s := NewService(testConfig(), true, nil)
	if err := s.ValidateURL("http://127.0.0.1:9999/"); err != nil {
		t.Errorf("development mode should allow loopback URLs: %v", err)
	}
}

func TestFetchExtractsTitleAndDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
			<title> Docs Home </title>
			<meta charset="utf-8">
			<meta name="description" content="All the documentation.">
		</head><body>hello</body></html>`))
	}))
	defer srv.Close()

	s := NewService(testConfig(), true, nil)
	result, err := s.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Title != "Docs Home" {
		t.Errorf("title = %q, want %q", result.Title, "Docs Home")
	}
	if result.Description != "All the documentation." {
		t.Errorf("description = %q, want %q", result.Description, "All the documentation.")
	}
	if !strings.Contains(result.Body, "hello") {
		t.Errorf("body missing content: %q", result.Body)
	}
}

func TestFetchRejectsUnsupportedContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0x1f, 0x8b})
	}))
	defer srv.Close()

	s := NewService(testConfig(), true, nil)
	if _, err := s.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected content-type rejection")
	}
}

func TestFetchDoesNotRetryOnHTTPError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewService(testConfig(), true, nil)
	if _, err := s.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("HTTP-level failures must not be retried, got %d calls", got)
	}
}

func TestFetchSetsUserAgent(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := NewService(testConfig(), true, nil)
	if _, err := s.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if seen != "respondeo-test" {
		t.Errorf("user agent = %q, want %q", seen, "respondeo-test")
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"plain", "<title>Hello</title>", "Hello"},
		{"with attributes", `<title data-x="1">Hi</title>`, "Hi"},
		{"missing", "<html><body>no title</body></html>", ""},
		{"unclosed", "<title>dangling", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle(tt.html); got != tt.want {
				t.Errorf("extractTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackoffDelayStartsAtOneSecond(t *testing.T) {
	expected := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for i, want := range expected {
		if got := backoffDelay(i + 1); got != want {
			t.Errorf("backoffDelay(%d) = %v, want %v", i+1, got, want)
		}
	}
}
