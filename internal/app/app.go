// ----- Application wiring: services, storage, handlers -----

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/handlers"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/services/agent"
	"github.com/ternarybob/respondeo/internal/services/crawler"
	"github.com/ternarybob/respondeo/internal/services/embeddings"
	"github.com/ternarybob/respondeo/internal/services/fetcher"
	"github.com/ternarybob/respondeo/internal/services/llm"
	"github.com/ternarybob/respondeo/internal/services/pipeline"
	"github.com/ternarybob/respondeo/internal/services/processor"
	"github.com/ternarybob/respondeo/internal/services/retrieval"
	"github.com/ternarybob/respondeo/internal/services/scheduler"
	"github.com/ternarybob/respondeo/internal/services/sources"
	"github.com/ternarybob/respondeo/internal/services/vectorstore"
	"github.com/ternarybob/respondeo/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage (only opened when export_jobs is enabled)
	BadgerDB   *badger.BadgerDB
	JobStorage interfaces.JobStorage

	// Ingestion side
	FetchService     interfaces.FetchService
	CrawlerService   interfaces.CrawlerService
	Processor        interfaces.TextProcessor
	EmbeddingService interfaces.EmbeddingService
	VectorStore      interfaces.VectorStore
	IngestionService interfaces.IngestionService

	// Query side
	RetrievalService interfaces.RetrievalService
	LLMService       interfaces.LLMService
	AgentService     interfaces.AgentService

	// Seed sources and periodic re-ingestion
	SourceService    *sources.Service
	SchedulerService *scheduler.Service

	// HTTP handlers
	QueryHandler     *handlers.QueryHandler
	IngestHandler    *handlers.IngestHandler
	JobsHandler      *handlers.JobsHandler
	StatusHandler    *handlers.StatusHandler
	SchedulerHandler *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("llm_provider", string(cfg.LLM.DefaultProvider)).
		Str("embedding_model", app.EmbeddingService.ModelName()).
		Bool("export_jobs", cfg.Storage.ExportJobs).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage opens badger job storage when export is enabled. In-memory
// job tracking needs no database.
func (a *App) initStorage() error {
	if !a.Config.Storage.ExportJobs {
		a.Logger.Debug().Msg("Job export disabled, tracking jobs in memory only")
		return nil
	}

	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to open badger database: %w", err)
	}

	a.BadgerDB = db
	a.JobStorage = badger.NewJobStorage(db, a.Logger)
	return nil
}

func (a *App) initServices() error {
	cfg := a.Config

	// Ingestion side
	a.FetchService = fetcher.NewService(cfg.Fetcher, cfg.AllowTestURLs(), a.Logger)
	a.CrawlerService = crawler.NewService(cfg.Crawler, a.FetchService, a.Logger)
	a.Processor = processor.NewService(cfg.Chunking, a.Logger)
	a.EmbeddingService = embeddings.NewService(cfg.Cohere, a.Logger)
	a.VectorStore = vectorstore.NewService(cfg.Qdrant, a.EmbeddingService.Dimension(), a.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.VectorStore.EnsureCollection(ctx); err != nil {
		// The store may simply not be up yet; ingestion retries collection
		// creation before every write.
		a.Logger.Warn().Err(err).Msg("Vector store collection not ready at startup")
	}

	a.IngestionService = pipeline.NewService(
		a.CrawlerService,
		a.Processor,
		a.EmbeddingService,
		a.VectorStore,
		a.JobStorage,
		a.Logger,
	)

	// Query side
	a.RetrievalService = retrieval.NewService(a.EmbeddingService, a.VectorStore, cfg.Retrieval, a.Logger)

	llmService, err := llm.NewLLMService(cfg, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM service: %w", err)
	}
	a.LLMService = llmService

	a.AgentService = agent.NewService(a.RetrievalService, a.LLMService, cfg.Agent, a.Logger)

	// Seed sources and scheduler
	a.SourceService = sources.NewService(cfg.Sources.Dir, a.Logger)
	if cfg.Scheduler.Enabled {
		a.SchedulerService = scheduler.NewService(a.SourceService, a.IngestionService, cfg.Scheduler, a.Logger)
		if err := a.SchedulerService.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	return nil
}

func (a *App) initHandlers() {
	a.QueryHandler = handlers.NewQueryHandler(a.AgentService, a.Config.Server, a.Logger)
	a.IngestHandler = handlers.NewIngestHandler(a.IngestionService, a.Logger)
	a.JobsHandler = handlers.NewJobsHandler(a.IngestionService, a.JobStorage, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.VectorStore, a.EmbeddingService, a.AgentService, a.Logger)

	// A nil *scheduler.Service must stay a nil interface so the handler can
	// report the scheduler as disabled.
	var sched interfaces.SchedulerService
	if a.SchedulerService != nil {
		sched = a.SchedulerService
	}
	a.SchedulerHandler = handlers.NewSchedulerHandler(sched, a.Logger)
}

// Close shuts down background work and releases resources.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		} else {
			a.Logger.Info().Msg("Scheduler stopped")
		}
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.JobStorage != nil {
		if err := a.JobStorage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close job storage")
		}
		// JobStorage.Close closes the underlying badger handle.
		a.BadgerDB = nil
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
