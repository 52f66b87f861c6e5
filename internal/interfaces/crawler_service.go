package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// CrawlerService discovers and extracts documentation pages.
type CrawlerService interface {
	// Crawl walks same-domain links breadth-first from the seed URLs, up to
	// maxPages pages, and returns the extracted content of each visited page.
	// Individual page failures are logged and skipped; the error is reserved
	// for conditions that abort the whole crawl.
	Crawl(ctx context.Context, seeds []string, maxPages int) ([]models.CrawlPage, error)

	// ExtractPage fetches one URL and extracts its main content without
	// following links.
	ExtractPage(ctx context.Context, url string) (*models.CrawlPage, error)

	// FetchSitemap downloads a sitemap-protocol XML document and returns its
	// URLs after applying the include/exclude substring filters.
	FetchSitemap(ctx context.Context, sitemapURL string, include, exclude []string) ([]string, error)
}
