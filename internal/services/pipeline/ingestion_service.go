// -------------------------------------------------------------------------
// Ingestion pipeline: fetch -> crawl -> clean -> chunk -> embed -> store
// -------------------------------------------------------------------------

package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Service implements the IngestionService interface. Jobs are tracked in
// memory for the run; an optional JobStorage persists them across restarts.
type Service struct {
	crawler    interfaces.CrawlerService
	processor  interfaces.TextProcessor
	embedder   interfaces.EmbeddingService
	store      interfaces.VectorStore
	jobStorage interfaces.JobStorage // nil unless storage.export_jobs is enabled
	logger     arbor.ILogger

	mu       sync.RWMutex
	jobs     map[string]*models.ProcessingJob
	jobOrder []string
}

// NewService creates a new ingestion pipeline service. jobStorage may be nil.
func NewService(
	crawler interfaces.CrawlerService,
	processor interfaces.TextProcessor,
	embedder interfaces.EmbeddingService,
	store interfaces.VectorStore,
	jobStorage interfaces.JobStorage,
	logger arbor.ILogger,
) *Service {
	return &Service{
		crawler:    crawler,
		processor:  processor,
		embedder:   embedder,
		store:      store,
		jobStorage: jobStorage,
		logger:     logger,
		jobs:       make(map[string]*models.ProcessingJob),
	}
}

// IngestURL runs the full pipeline for one URL. When crawl is true,
// same-domain links are followed up to maxPages pages.
func (s *Service) IngestURL(ctx context.Context, rawURL string, crawl bool, maxPages int) (*models.ProcessingJob, error) {
	job := models.NewProcessingJob(rawURL)
	s.trackJob(job)

	job.Start()
	s.exportJob(ctx, job)

	s.logger.Info().
		Str("job_id", job.ID).
		Str("url", rawURL).
		Bool("crawl", crawl).
		Msg("Starting ingestion")

	var pages []models.CrawlPage
	var err error
	if crawl {
		pages, err = s.crawler.Crawl(ctx, []string{rawURL}, maxPages)
	} else {
		var page *models.CrawlPage
		page, err = s.crawler.ExtractPage(ctx, rawURL)
		if page != nil {
			pages = []models.CrawlPage{*page}
		}
	}
	if err != nil {
		job.Fail(err)
		s.exportJob(ctx, job)
		return job, fmt.Errorf("content extraction failed for %s: %w", rawURL, err)
	}
	if len(pages) == 0 {
		err = fmt.Errorf("no pages extracted from %s", rawURL)
		job.Fail(err)
		s.exportJob(ctx, job)
		return job, err
	}

	processed, total, err := s.ingestPages(ctx, pages)
	if err != nil {
		job.Fail(err)
		s.exportJob(ctx, job)
		return job, fmt.Errorf("ingestion failed for %s: %w", rawURL, err)
	}

	job.Complete(processed, total)
	s.exportJob(ctx, job)

	s.logger.Info().
		Str("job_id", job.ID).
		Str("url", rawURL).
		Int("pages", len(pages)).
		Int("chunks", total).
		Msg("Ingestion completed")

	return job, nil
}

// IngestURLs ingests a batch of URLs sequentially. A failed URL is logged and
// the batch continues; every URL gets a job regardless of outcome.
func (s *Service) IngestURLs(ctx context.Context, urls []string) []*models.ProcessingJob {
	jobs := make([]*models.ProcessingJob, 0, len(urls))
	for _, u := range urls {
		job, err := s.IngestURL(ctx, u, false, 0)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("url", u).
				Msg("URL ingestion failed, continuing batch")
		}
		jobs = append(jobs, job)

		if ctx.Err() != nil {
			break
		}
	}
	return jobs
}

// IngestSitemap expands a sitemap, applies the substring filters, and ingests
// the surviving URLs.
func (s *Service) IngestSitemap(ctx context.Context, sitemapURL string, include, exclude []string) ([]*models.ProcessingJob, error) {
	urls, err := s.crawler.FetchSitemap(ctx, sitemapURL, include, exclude)
	if err != nil {
		return nil, fmt.Errorf("sitemap expansion failed for %s: %w", sitemapURL, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("sitemap %s yielded no URLs after filtering", sitemapURL)
	}

	s.logger.Info().
		Str("sitemap", sitemapURL).
		Int("urls", len(urls)).
		Msg("Ingesting sitemap URLs")

	return s.IngestURLs(ctx, urls), nil
}

// Jobs returns all tracked jobs, newest first.
func (s *Service) Jobs() []*models.ProcessingJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*models.ProcessingJob, 0, len(s.jobOrder))
	for i := len(s.jobOrder) - 1; i >= 0; i-- {
		jobs = append(jobs, s.jobs[s.jobOrder[i]])
	}
	return jobs
}

// Job returns a tracked job by ID, or nil when unknown.
func (s *Service) Job(id string) *models.ProcessingJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

// ingestPages cleans, chunks, embeds, and stores the extracted pages.
// Returns (processed, total) chunk counts. A page producing no chunks is
// skipped; an embed or store failure aborts the remaining pages.
func (s *Service) ingestPages(ctx context.Context, pages []models.CrawlPage) (int, int, error) {
	processed := 0
	total := 0

	for _, page := range pages {
		cleaned := s.processor.Clean(page.Content)
		texts := s.processor.Chunk(cleaned)
		if len(texts) == 0 {
			s.logger.Warn().
				Str("url", page.URL).
				Msg("Page produced no chunks, skipping")
			continue
		}
		total += len(texts)

		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return processed, total, fmt.Errorf("embedding failed for %s: %w", page.URL, err)
		}

		chunks := buildChunks(page, texts, vectors)
		if err := s.store.Upsert(ctx, chunks); err != nil {
			return processed, total, fmt.Errorf("vector store write failed for %s: %w", page.URL, err)
		}

		processed += len(chunks)
		s.logger.Debug().
			Str("url", page.URL).
			Int("chunks", len(chunks)).
			Msg("Page ingested")
	}

	return processed, total, nil
}

// buildChunks assembles DocumentChunks for one page. Chunk indices are
// 0-based and contiguous; every chunk carries the page count as total_chunks.
func buildChunks(page models.CrawlPage, texts []string, vectors [][]float32) []models.DocumentChunk {
	now := time.Now().UTC()
	chunks := make([]models.DocumentChunk, 0, len(texts))
	for i, text := range texts {
		metadata := map[string]interface{}{
			"source_domain": hostOf(page.URL),
		}
		if page.Title != "" {
			metadata["title"] = page.Title
		}

		chunks = append(chunks, models.DocumentChunk{
			SourceURL:   page.URL,
			Content:     text,
			Embedding:   vectors[i],
			ChunkIndex:  i,
			TotalChunks: len(texts),
			CreatedAt:   now,
			Metadata:    metadata,
		})
	}
	return chunks
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// trackJob registers a job in the in-memory index.
func (s *Service) trackJob(job *models.ProcessingJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	s.jobOrder = append(s.jobOrder, job.ID)
}

// exportJob persists the job state when a job store is configured.
func (s *Service) exportJob(ctx context.Context, job *models.ProcessingJob) {
	if s.jobStorage == nil {
		return
	}
	if err := s.jobStorage.SaveJob(ctx, job); err != nil {
		s.logger.Warn().
			Err(err).
			Str("job_id", job.ID).
			Msg("Failed to export job state")
	}
}
