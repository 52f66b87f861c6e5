// -----------------------------------------------------------------------
// Crawler Service - BFS documentation crawling
// -----------------------------------------------------------------------

package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Service crawls documentation sites breadth-first and extracts page content.
type Service struct {
	fetcher     interfaces.FetchService
	extractor   *ContentExtractor
	links       *LinkExtractor
	rateLimiter *RateLimiter
	cfg         common.CrawlerConfig
	logger      arbor.ILogger
}

// NewService creates a crawler on top of a fetcher.
func NewService(cfg common.CrawlerConfig, fetcher interfaces.FetchService, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		fetcher:     fetcher,
		extractor:   NewContentExtractor(cfg.OutputFormat, logger),
		links:       NewLinkExtractor(logger),
		rateLimiter: NewRateLimiter(cfg.RequestDelay),
		cfg:         cfg,
		logger:      logger,
	}
}

type frontierEntry struct {
	url   string
	depth int
}

// Crawl walks same-domain links breadth-first from the seeds. Page failures
// are logged and skipped; only context cancellation aborts the crawl.
func (s *Service) Crawl(ctx context.Context, seeds []string, maxPages int) ([]models.CrawlPage, error) {
	if maxPages <= 0 {
		maxPages = s.cfg.MaxPages
	}

	visited := make(map[string]bool)
	var frontier []frontierEntry
	for _, seed := range seeds {
		normalized, err := NormalizeURL(seed)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", seed).Msg("Skipping unparseable seed URL")
			continue
		}
		if !visited[normalized] {
			visited[normalized] = true
			frontier = append(frontier, frontierEntry{url: normalized, depth: 0})
		}
	}
	if len(frontier) == 0 {
		return nil, fmt.Errorf("no crawlable seed URLs")
	}
	seedHost := frontier[0].url

	var pages []models.CrawlPage
	for len(frontier) > 0 && len(pages) < maxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		entry := frontier[0]
		frontier = frontier[1:]

		if err := s.rateLimiter.Wait(ctx, entry.url); err != nil {
			return pages, err
		}

		result, err := s.fetcher.Fetch(ctx, entry.url)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", entry.url).Msg("Skipping page after fetch failure")
			continue
		}

		page, err := s.buildPage(entry.url, result)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", entry.url).Msg("Skipping page after extraction failure")
		} else if page.Content != "" {
			pages = append(pages, *page)
		}

		if entry.depth >= s.cfg.MaxDepth {
			continue
		}

		discovered, err := s.links.ExtractLinks(result.Body, entry.url)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", entry.url).Msg("Link extraction failed")
			continue
		}
		for _, link := range discovered {
			if visited[link] {
				continue
			}
			if !SameHost(link, seedHost) || !ShouldCrawl(link) {
				continue
			}
			visited[link] = true
			frontier = append(frontier, frontierEntry{url: link, depth: entry.depth + 1})
		}
	}

	s.logger.Info().
		Int("pages", len(pages)).
		Int("visited", len(visited)).
		Msg("Crawl completed")

	return pages, nil
}

// ExtractPage fetches one URL and extracts its content without following
// links.
func (s *Service) ExtractPage(ctx context.Context, url string) (*models.CrawlPage, error) {
	normalized, err := NormalizeURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", url, err)
	}

	if err := s.rateLimiter.Wait(ctx, normalized); err != nil {
		return nil, err
	}

	result, err := s.fetcher.Fetch(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return s.buildPage(normalized, result)
}

func (s *Service) buildPage(url string, result *models.FetchResult) (*models.CrawlPage, error) {
	// Non-HTML payloads (JSON, plain text) carry their own content
	if !strings.Contains(strings.ToLower(result.ContentType), "text/html") {
		return &models.CrawlPage{
			URL:     url,
			Title:   result.Title,
			Content: strings.TrimSpace(result.Body),
		}, nil
	}

	content, err := s.extractor.Extract(result.Body, url)
	if err != nil {
		return nil, err
	}
	title := result.Title
	if title == "" {
		title = s.extractor.ExtractTitle(result.Body)
	}
	return &models.CrawlPage{
		URL:     url,
		Title:   title,
		Content: content,
	}, nil
}

var _ interfaces.CrawlerService = (*Service)(nil)
