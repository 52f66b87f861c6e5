package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/app"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/ternarybob/respondeo/internal/server"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths // Multiple -config flags supported
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// One-shot ingestion (runs the pipeline once and exits instead of serving)
	ingestURL     = flag.String("ingest", "", "Ingest a single URL and exit")
	ingestSitemap = flag.String("ingest-sitemap", "", "Ingest all URLs from a sitemap and exit")
	ingestCrawl   = flag.Bool("crawl", false, "Follow same-domain links from the ingested URL")
	ingestPages   = flag.Int("max-pages", 0, "Page budget when crawling (0 uses config)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	defer common.RecoverWithCrashFile()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Respondeo version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Merge port flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("respondeo.toml"); err == nil {
			configFiles = append(configFiles, "respondeo.toml")
		} else if _, err := os.Stat("deployments/local/respondeo.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/respondeo.toml")
		}
	}

	// Load configuration (defaults -> files -> env -> CLI)
	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	logger = common.InitLogger(config)

	common.InstallCrashHandler("")

	common.PrintBanner(common.GetFullVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Str("log_level", config.Logging.Level).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	if *ingestURL != "" || *ingestSitemap != "" {
		code := runIngest(application)
		application.Close()
		os.Exit(code)
	}

	srv := server.New(application)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("Server goroutine panicked")
			}
		}()

		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Give goroutine a moment to start
	time.Sleep(100 * time.Millisecond)

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}

// runIngest executes one ingestion pass and reports per-job outcomes.
// Returns the process exit code: non-zero when any job failed.
func runIngest(application *app.App) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var jobs []*models.ProcessingJob

	if *ingestSitemap != "" {
		sitemapJobs, err := application.IngestionService.IngestSitemap(ctx, *ingestSitemap, nil, nil)
		if err != nil {
			logger.Error().Err(err).Str("sitemap_url", *ingestSitemap).Msg("Sitemap ingestion failed")
			return 1
		}
		jobs = sitemapJobs
	} else {
		job, err := application.IngestionService.IngestURL(ctx, *ingestURL, *ingestCrawl, *ingestPages)
		if err != nil {
			logger.Error().Err(err).Str("url", *ingestURL).Msg("Ingestion failed")
			return 1
		}
		jobs = append(jobs, job)
	}

	failed := 0
	for _, job := range jobs {
		if job.Status == models.JobStatusFailed {
			failed++
		}
		logger.Info().
			Str("url", job.URL).
			Str("status", job.Status).
			Int("chunks", job.ProcessedChunks).
			Msg("Ingestion job finished")
	}

	logger.Info().Int("jobs", len(jobs)).Int("failed", failed).Msg("Ingestion run complete")
	if failed > 0 {
		return 1
	}
	return 0
}
