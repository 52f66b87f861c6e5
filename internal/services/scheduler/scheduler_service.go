// -------------------------------------------------------------------------
// Periodic re-ingestion of seed sources
// -------------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/ternarybob/respondeo/internal/services/sources"
)

// Service re-ingests the enabled seed sources on a cron schedule. Runs are
// serialized: a cycle that fires while the previous one is still ingesting
// is skipped, not queued.
type Service struct {
	sources   *sources.Service
	ingestion interfaces.IngestionService
	cfg       common.SchedulerConfig
	cron      *cron.Cron
	logger    arbor.ILogger

	mu           sync.Mutex
	isProcessing bool
	running      bool
	cronID       cron.EntryID
}

// NewService creates a new re-ingestion scheduler.
func NewService(sourceService *sources.Service, ingestion interfaces.IngestionService, cfg common.SchedulerConfig, logger arbor.ILogger) *Service {
	return &Service{
		sources:   sourceService,
		ingestion: ingestion,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger,
	}
}

// Start begins the scheduler with the configured cron expression.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	schedule := s.cfg.Schedule
	if err := common.ValidateSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		common.SafeGo(s.logger, "reingestion-cycle", s.runReingestion)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.cronID = cronID

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Msg("Re-ingestion scheduler started")

	return nil
}

// Stop halts the scheduler. A run in progress completes; Stop does not wait
// for it.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cron.Stop()
	s.running = false

	s.logger.Info().Msg("Re-ingestion scheduler stopped")
	return nil
}

// IsRunning returns true if the scheduler is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run time, or zero when not running.
func (s *Service) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.cronID).Next
}

// TriggerNow runs a re-ingestion cycle immediately in the background.
func (s *Service) TriggerNow() {
	s.logger.Info().Msg("Manual re-ingestion trigger requested")
	common.SafeGo(s.logger, "reingestion-cycle", s.runReingestion)
}

// runReingestion executes one re-ingestion cycle over the enabled seeds.
// Both entry points run it through common.SafeGo, which owns panic recovery.
func (s *Service) runReingestion() {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		s.logger.Debug().Msg("Previous re-ingestion cycle still running, skipping")
		return
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	startTime := time.Now()
	s.logger.Info().Msg("Starting re-ingestion cycle")

	seeds, err := s.sources.EnabledSources()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load seed sources")
		return
	}
	if len(seeds) == 0 {
		s.logger.Info().Msg("No enabled seed sources, nothing to re-ingest")
		return
	}

	ctx := context.Background()
	completed := 0
	failed := 0
	for _, seed := range seeds {
		jobs := s.ingestSeed(ctx, seed)
		for _, job := range jobs {
			if job == nil {
				continue
			}
			if job.Status == models.JobStatusCompleted {
				completed++
			} else {
				failed++
			}
		}
	}

	s.logger.Info().
		Int("sources", len(seeds)).
		Int("completed", completed).
		Int("failed", failed).
		Dur("duration", time.Since(startTime)).
		Msg("Re-ingestion cycle finished")
}

// ingestSeed runs one seed source through the pipeline. A failing seed is
// logged and does not abort the cycle.
func (s *Service) ingestSeed(ctx context.Context, seed models.SeedSource) []*models.ProcessingJob {
	s.logger.Info().
		Str("source", seed.Name).
		Msg("Re-ingesting seed source")

	if seed.SitemapURL != "" {
		jobs, err := s.ingestion.IngestSitemap(ctx, seed.SitemapURL, seed.Include, seed.Exclude)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("source", seed.Name).
				Msg("Sitemap re-ingestion failed")
		}
		return jobs
	}

	job, err := s.ingestion.IngestURL(ctx, seed.URL, seed.Crawl, seed.MaxPages)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("source", seed.Name).
			Msg("URL re-ingestion failed")
	}
	if job == nil {
		return nil
	}
	return []*models.ProcessingJob{job}
}
