package crawler

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// sitemapURLSet is the sitemap-protocol <urlset> document.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// FetchSitemap downloads a sitemap and returns its URLs after applying the
// include/exclude substring filters. Include filters are OR-ed; any exclude
// match drops the URL.
func (s *Service) FetchSitemap(ctx context.Context, sitemapURL string, include, exclude []string) ([]string, error) {
	result, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %w", sitemapURL, err)
	}

	urls, err := parseSitemap(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap %s: %w", sitemapURL, err)
	}

	filtered := filterSitemapURLs(urls, include, exclude)

	s.logger.Info().
		Str("sitemap_url", sitemapURL).
		Int("found", len(urls)).
		Int("after_filters", len(filtered)).
		Msg("Sitemap expanded")

	return filtered, nil
}

func parseSitemap(body string) ([]string, error) {
	var urlset sitemapURLSet
	if err := xml.Unmarshal([]byte(body), &urlset); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(urlset.URLs))
	for _, entry := range urlset.URLs {
		loc := strings.TrimSpace(entry.Loc)
		if loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

func filterSitemapURLs(urls, include, exclude []string) []string {
	var filtered []string
	for _, u := range urls {
		if len(include) > 0 {
			matched := false
			for _, pattern := range include {
				if strings.Contains(u, pattern) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}

		excluded := false
		for _, pattern := range exclude {
			if pattern != "" && strings.Contains(u, pattern) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}

		filtered = append(filtered, u)
	}
	return filtered
}
