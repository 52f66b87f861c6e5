package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// IngestionService orchestrates the fetch -> clean -> chunk -> embed -> store
// pipeline and tracks a ProcessingJob per URL. One URL's failure never aborts
// the rest of a batch.
type IngestionService interface {
	// IngestURL runs the full pipeline for one URL. When crawl is true,
	// same-domain links are followed up to maxPages pages.
	IngestURL(ctx context.Context, url string, crawl bool, maxPages int) (*models.ProcessingJob, error)

	// IngestURLs ingests a batch of URLs sequentially, returning one job per
	// URL regardless of individual outcomes.
	IngestURLs(ctx context.Context, urls []string) []*models.ProcessingJob

	// IngestSitemap expands a sitemap, applies the substring filters, and
	// ingests the surviving URLs.
	IngestSitemap(ctx context.Context, sitemapURL string, include, exclude []string) ([]*models.ProcessingJob, error)

	// Jobs returns all tracked jobs, newest first.
	Jobs() []*models.ProcessingJob

	// Job returns a tracked job by ID, or nil when unknown.
	Job(id string) *models.ProcessingJob
}
