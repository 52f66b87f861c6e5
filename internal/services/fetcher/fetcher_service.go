package fetcher

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Hostnames that always resolve to the local machine. Checked before any
// network I/O; DNS is deliberately not resolved, so a public hostname that
// resolves to a private address is not caught here.
var localhostAliases = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// Service fetches single URLs with retry. Worst-case wall time for one Fetch
// is bounded by maxRetries*timeout plus the backoff sum (1+2+4... seconds
// plus up to one second of jitter per attempt).
type Service struct {
	cfg           common.FetcherConfig
	allowTestURLs bool
	client        *http.Client
	logger        arbor.ILogger
}

// NewService creates a fetcher. allowTestURLs relaxes the loopback guard for
// development and test environments.
func NewService(cfg common.FetcherConfig, allowTestURLs bool, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		cfg:           cfg,
		allowTestURLs: allowTestURLs,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// ValidateURL rejects URLs that must never be fetched: non-http(s) schemes,
// localhost aliases, and private or loopback IP literals.
func (s *Service) ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL %q has no host", rawURL)
	}

	if s.allowTestURLs {
		return nil
	}

	if localhostAliases[strings.ToLower(host)] {
		return fmt.Errorf("refusing to fetch localhost URL %q", rawURL)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("refusing to fetch private address %q", host)
		}
	}
	return nil
}

// Fetch downloads the URL, retrying transport errors with exponential backoff
// starting at one second plus jitter. A response outside 2xx or with a
// disallowed content type ends the attempt chain immediately.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	if err := s.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffDelay(attempt) + time.Duration(rand.Float64()*float64(time.Second))
			s.logger.Debug().
				Str("url", rawURL).
				Int("attempt", attempt+1).
				Dur("backoff", wait).
				Msg("Retrying fetch")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, retryable, err := s.fetchOnce(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		s.logger.Warn().Err(err).Str("url", rawURL).Int("attempt", attempt+1).Msg("Fetch attempt failed")
	}

	return nil, fmt.Errorf("fetch failed after %d attempts for %s: %w", s.cfg.MaxRetries, rawURL, lastErr)
}

// backoffDelay returns the base wait before retry attempt n: one second for
// the first retry, doubling after. Jitter is added at the call site.
func backoffDelay(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
}

// fetchOnce performs one attempt. The second return reports whether the
// failure is worth retrying (transport errors yes, HTTP-level rejections no).
func (s *Service) fetchOnce(ctx context.Context, rawURL string) (*models.FetchResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if !s.contentTypeAllowed(contentType) {
		return nil, false, fmt.Errorf("unsupported content type %q for %s", contentType, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodySize))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read body: %w", err)
	}

	text := string(body)
	return &models.FetchResult{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        text,
		Title:       extractTitle(text),
		Description: extractMetaDescription(text),
		FetchedAt:   time.Now().UTC(),
	}, false, nil
}

func (s *Service) contentTypeAllowed(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, allowed := range s.cfg.AllowedContentTypes {
		if strings.Contains(ct, allowed) {
			return true
		}
	}
	return false
}

// extractTitle pulls the <title> text with a tolerant substring scan. Returns
// "" when the document has no parseable title.
func extractTitle(html string) string {
	lower := strings.ToLower(html)
	start := strings.Index(lower, "<title")
	if start < 0 {
		return ""
	}
	open := strings.Index(lower[start:], ">")
	if open < 0 {
		return ""
	}
	start += open + 1
	end := strings.Index(lower[start:], "</title>")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(html[start : start+end])
}

// extractMetaDescription scans for <meta name="description" content="...">.
func extractMetaDescription(html string) string {
	lower := strings.ToLower(html)
	pos := 0
	for {
		idx := strings.Index(lower[pos:], "<meta")
		if idx < 0 {
			return ""
		}
		tagStart := pos + idx
		tagEnd := strings.Index(lower[tagStart:], ">")
		if tagEnd < 0 {
			return ""
		}
		tag := lower[tagStart : tagStart+tagEnd]
		if strings.Contains(tag, `name="description"`) || strings.Contains(tag, "name='description'") {
			raw := html[tagStart : tagStart+tagEnd]
			return extractAttr(raw, "content")
		}
		pos = tagStart + tagEnd
	}
}

func extractAttr(tag, name string) string {
	lower := strings.ToLower(tag)
	idx := strings.Index(lower, name+"=")
	if idx < 0 {
		return ""
	}
	rest := tag[idx+len(name)+1:]
	if rest == "" {
		return ""
	}
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return ""
	}
	rest = rest[1:]
	end := strings.IndexByte(rest, quote)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

var _ interfaces.FetchService = (*Service)(nil)
