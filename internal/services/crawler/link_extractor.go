// -----------------------------------------------------------------------
// Link Extractor - Link discovery from HTML content
// -----------------------------------------------------------------------

package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// LinkExtractor discovers candidate links from HTML content
type LinkExtractor struct {
	logger arbor.ILogger
}

// NewLinkExtractor creates a new link extractor
func NewLinkExtractor(logger arbor.ILogger) *LinkExtractor {
	return &LinkExtractor{
		logger: logger,
	}
}

// ExtractLinks discovers all followable links from HTML content, resolved
// against the source URL and normalized. Results are deduplicated by their
// normalized form.
func (le *LinkExtractor) ExtractLinks(html string, sourceURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for link extraction: %w", err)
	}

	baseURL, err := url.Parse(sourceURL)
	if err != nil {
		le.logger.Warn().Err(err).Str("source_url", sourceURL).Msg("Failed to parse source URL for link resolution")
		baseURL = nil
	}

	var links []string
	linkSet := make(map[string]bool)

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		if le.shouldSkipLink(href) {
			return
		}

		resolved := le.resolveURL(href, baseURL)
		if resolved == "" {
			return
		}
		normalized, err := NormalizeURL(resolved)
		if err != nil {
			return
		}
		if !linkSet[normalized] {
			linkSet[normalized] = true
			links = append(links, normalized)
		}
	})

	le.logger.Debug().
		Str("source_url", sourceURL).
		Int("links_found", len(links)).
		Msg("Links extracted from HTML content")

	return links, nil
}

// shouldSkipLink determines if a link should be skipped during extraction
func (le *LinkExtractor) shouldSkipLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))

	if href == "" {
		return true
	}

	// Non-navigable schemes
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "sms:") ||
		strings.HasPrefix(href, "ftp:") ||
		strings.HasPrefix(href, "data:") {
		return true
	}

	// Fragment-only links (anchors)
	if strings.HasPrefix(href, "#") {
		return true
	}

	return false
}

// resolveURL resolves a potentially relative URL against a base URL
func (le *LinkExtractor) resolveURL(href string, baseURL *url.URL) string {
	if baseURL == nil {
		if parsed, err := url.Parse(href); err == nil && parsed.IsAbs() {
			return parsed.String()
		}
		return ""
	}

	resolved, err := baseURL.Parse(href)
	if err != nil {
		le.logger.Debug().Err(err).Str("href", href).Msg("Failed to resolve URL")
		return ""
	}
	return resolved.String()
}
