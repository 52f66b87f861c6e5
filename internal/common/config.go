package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production" - controls test URL validation
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Fetcher     FetcherConfig   `toml:"fetcher"`
	Crawler     CrawlerConfig   `toml:"crawler"`
	Chunking    ChunkingConfig  `toml:"chunking"`
	Cohere      CohereConfig    `toml:"cohere"`
	Qdrant      QdrantConfig    `toml:"qdrant"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Agent       AgentConfig     `toml:"agent"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Sources     SourcesConfig   `toml:"sources"`
}

type ServerConfig struct {
	Port                 int           `toml:"port"`
	Host                 string        `toml:"host"`
	MaxConcurrentQueries int           `toml:"max_concurrent_queries"` // Bounded query worker semaphore
	QueryTimeout         time.Duration `toml:"query_timeout"`          // Per-request deadline, maps to REQUEST_TIMEOUT
}

type StorageConfig struct {
	Badger     BadgerConfig `toml:"badger"`
	ExportJobs bool         `toml:"export_jobs"` // Persist processing jobs to badger instead of memory-only
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// FetcherConfig controls single-URL fetching
type FetcherConfig struct {
	RequestTimeout      time.Duration `toml:"request_timeout"`       // HTTP request timeout
	MaxRetries          int           `toml:"max_retries"`           // Retry attempts for transport errors
	UserAgent           string        `toml:"user_agent"`            // User agent string
	MaxBodySize         int64         `toml:"max_body_size"`         // Maximum response body size in bytes
	AllowedContentTypes []string      `toml:"allowed_content_types"` // Content-type substrings accepted for processing
}

// CrawlerConfig controls BFS link crawling
type CrawlerConfig struct {
	MaxDepth     int           `toml:"max_depth"`     // Maximum crawl depth from seed
	MaxPages     int           `toml:"max_pages"`     // Page budget per crawl
	RequestDelay time.Duration `toml:"request_delay"` // Politeness delay between requests
	OutputFormat string        `toml:"output_format"` // "text" or "markdown"
}

// ChunkingConfig controls text splitting
type ChunkingConfig struct {
	ChunkSize    int `toml:"chunk_size"`     // Window size in bytes
	ChunkOverlap int `toml:"chunk_overlap"`  // Overlap between consecutive windows
	MinChunkSize int `toml:"min_chunk_size"` // Chunks shorter than this are dropped
}

// CohereConfig contains Cohere embedding API configuration
type CohereConfig struct {
	APIKey    string        `toml:"api_key"`    // Cohere API key
	BaseURL   string        `toml:"base_url"`   // API base URL (default: "https://api.cohere.ai")
	Model     string        `toml:"model"`      // Embedding model (default: "embed-english-v3.0")
	Dimension int           `toml:"dimension"`  // Vector dimension, fixed for the collection lifetime
	BatchSize int           `toml:"batch_size"` // Texts per embed call (API limit: 96)
	Timeout   time.Duration `toml:"timeout"`    // HTTP request timeout
}

// QdrantConfig contains Qdrant vector store configuration
type QdrantConfig struct {
	URL             string        `toml:"url"`               // Qdrant base URL
	APIKey          string        `toml:"api_key"`           // Optional api-key header
	Collection      string        `toml:"collection"`        // Collection name
	UpsertBatchSize int           `toml:"upsert_batch_size"` // Points per upsert call
	Timeout         time.Duration `toml:"timeout"`           // HTTP request timeout
}

// RetrievalConfig controls query-side retrieval behavior
type RetrievalConfig struct {
	DefaultTopK        int    `toml:"default_top_k"`        // Used when a request omits top_k
	MaxTopK            int    `toml:"max_top_k"`            // Requests above this are clamped
	MaxRetries         int    `toml:"max_retries"`          // Retries for connection-indicating errors
	OnExhaustedRetries string `toml:"on_exhausted_retries"` // "return_empty" or "fail"
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Generation model (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Generation model (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
}

// AgentConfig controls answer generation
type AgentConfig struct {
	HistorySize       int  `toml:"history_size"`        // Conversation exchanges kept for prompt context
	MaxContextContent int  `toml:"max_context_content"` // Per-chunk content cap in the prompt, bytes
	IncludeScores     bool `toml:"include_scores"`      // Render similarity scores in the prompt context
}

// SchedulerConfig controls periodic re-ingestion of seed sources
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
}

// SourcesConfig contains seed manifest loading configuration
type SourcesConfig struct {
	Dir string `toml:"dir"` // Directory containing seed manifest files (YAML)
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in respondeo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development", // Default to development mode - allows test URLs
		Server: ServerConfig{
			Port:                 8080,
			Host:                 "localhost",
			MaxConcurrentQueries: 8,
			QueryTimeout:         120 * time.Second,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
			ExportJobs: false, // In-memory job tracking unless explicitly enabled
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Fetcher: FetcherConfig{
			RequestTimeout:      30 * time.Second,
			MaxRetries:          3,
			UserAgent:           "respondeo/1.0 (+https://github.com/ternarybob/respondeo)",
			MaxBodySize:         10 * 1024 * 1024, // 10MB
			AllowedContentTypes: []string{"text/html", "application/json", "text/plain", "application/xml", "text/xml"},
		},
		Crawler: CrawlerConfig{
			MaxDepth:     3,
			MaxPages:     50,
			RequestDelay: 1 * time.Second,
			OutputFormat: "text",
		},
		Chunking: ChunkingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 100,
			MinChunkSize: 10,
		},
		Cohere: CohereConfig{
			APIKey:    "", // User must provide API key
			BaseURL:   "https://api.cohere.ai",
			Model:     "embed-english-v3.0",
			Dimension: 1024,
			BatchSize: 96, // Cohere API maximum
			Timeout:   30 * time.Second,
		},
		Qdrant: QdrantConfig{
			URL:             "http://localhost:6333",
			APIKey:          "",
			Collection:      "document_chunks",
			UpsertBatchSize: 64,
			Timeout:         30 * time.Second,
		},
		Retrieval: RetrievalConfig{
			DefaultTopK:        5,
			MaxTopK:            100,
			MaxRetries:         3,
			OnExhaustedRetries: "return_empty", // Availability over consistency
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (no fallback)
			Model:       "gemini-2.0-flash",
			Timeout:     "5m",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Agent: AgentConfig{
			HistorySize:       3,
			MaxContextContent: 2000,
			IncludeScores:     true,
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,           // Disabled by default - user must explicitly opt-in
			Schedule: "0 0 */6 * * *", // Every 6 hours (cron format with seconds)
		},
		Sources: SourcesConfig{
			Dir: "./sources",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env -> CLI. Later files override earlier
// files.
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: RESPONDEO_ENV, fallback: GO_ENV)
	if env := os.Getenv("RESPONDEO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("RESPONDEO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RESPONDEO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if maxQueries := os.Getenv("RESPONDEO_SERVER_MAX_CONCURRENT_QUERIES"); maxQueries != "" {
		if mq, err := strconv.Atoi(maxQueries); err == nil && mq > 0 {
			config.Server.MaxConcurrentQueries = mq
		}
	}
	if queryTimeout := os.Getenv("RESPONDEO_SERVER_QUERY_TIMEOUT"); queryTimeout != "" {
		if qt, err := time.ParseDuration(queryTimeout); err == nil {
			config.Server.QueryTimeout = qt
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("RESPONDEO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if exportJobs := os.Getenv("RESPONDEO_STORAGE_EXPORT_JOBS"); exportJobs != "" {
		if ej, err := strconv.ParseBool(exportJobs); err == nil {
			config.Storage.ExportJobs = ej
		}
	}

	// Logging configuration
	if level := os.Getenv("RESPONDEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("RESPONDEO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("RESPONDEO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Fetcher configuration
	if requestTimeout := os.Getenv("RESPONDEO_FETCHER_REQUEST_TIMEOUT"); requestTimeout != "" {
		if rt, err := time.ParseDuration(requestTimeout); err == nil {
			config.Fetcher.RequestTimeout = rt
		}
	}
	if maxRetries := os.Getenv("RESPONDEO_FETCHER_MAX_RETRIES"); maxRetries != "" {
		if mr, err := strconv.Atoi(maxRetries); err == nil {
			config.Fetcher.MaxRetries = mr
		}
	}
	if userAgent := os.Getenv("RESPONDEO_FETCHER_USER_AGENT"); userAgent != "" {
		config.Fetcher.UserAgent = userAgent
	}
	if maxBodySize := os.Getenv("RESPONDEO_FETCHER_MAX_BODY_SIZE"); maxBodySize != "" {
		if mbs, err := strconv.ParseInt(maxBodySize, 10, 64); err == nil {
			config.Fetcher.MaxBodySize = mbs
		}
	}

	// Crawler configuration
	if maxDepth := os.Getenv("RESPONDEO_CRAWLER_MAX_DEPTH"); maxDepth != "" {
		if md, err := strconv.Atoi(maxDepth); err == nil {
			config.Crawler.MaxDepth = md
		}
	}
	if maxPages := os.Getenv("RESPONDEO_CRAWLER_MAX_PAGES"); maxPages != "" {
		if mp, err := strconv.Atoi(maxPages); err == nil {
			config.Crawler.MaxPages = mp
		}
	}
	if requestDelay := os.Getenv("RESPONDEO_CRAWLER_REQUEST_DELAY"); requestDelay != "" {
		if rd, err := time.ParseDuration(requestDelay); err == nil {
			config.Crawler.RequestDelay = rd
		}
	}
	if outputFormat := os.Getenv("RESPONDEO_CRAWLER_OUTPUT_FORMAT"); outputFormat != "" {
		config.Crawler.OutputFormat = outputFormat
	}

	// Chunking configuration
	if chunkSize := os.Getenv("RESPONDEO_CHUNK_SIZE"); chunkSize != "" {
		if cs, err := strconv.Atoi(chunkSize); err == nil {
			config.Chunking.ChunkSize = cs
		}
	}
	if chunkOverlap := os.Getenv("RESPONDEO_CHUNK_OVERLAP"); chunkOverlap != "" {
		if co, err := strconv.Atoi(chunkOverlap); err == nil {
			config.Chunking.ChunkOverlap = co
		}
	}
	if minChunkSize := os.Getenv("RESPONDEO_MIN_CHUNK_SIZE"); minChunkSize != "" {
		if mcs, err := strconv.Atoi(minChunkSize); err == nil {
			config.Chunking.MinChunkSize = mcs
		}
	}

	// Cohere configuration
	if apiKey := os.Getenv("RESPONDEO_COHERE_API_KEY"); apiKey != "" {
		config.Cohere.APIKey = apiKey
	} else if apiKey := os.Getenv("COHERE_API_KEY"); apiKey != "" {
		config.Cohere.APIKey = apiKey
	}
	if baseURL := os.Getenv("RESPONDEO_COHERE_BASE_URL"); baseURL != "" {
		config.Cohere.BaseURL = baseURL
	}
	if model := os.Getenv("RESPONDEO_COHERE_MODEL"); model != "" {
		config.Cohere.Model = model
	}
	if dimension := os.Getenv("RESPONDEO_COHERE_DIMENSION"); dimension != "" {
		if d, err := strconv.Atoi(dimension); err == nil {
			config.Cohere.Dimension = d
		}
	}
	if batchSize := os.Getenv("RESPONDEO_COHERE_BATCH_SIZE"); batchSize != "" {
		if bs, err := strconv.Atoi(batchSize); err == nil {
			config.Cohere.BatchSize = bs
		}
	}

	// Qdrant configuration
	if url := os.Getenv("RESPONDEO_QDRANT_URL"); url != "" {
		config.Qdrant.URL = url
	}
	if apiKey := os.Getenv("RESPONDEO_QDRANT_API_KEY"); apiKey != "" {
		config.Qdrant.APIKey = apiKey
	}
	if collection := os.Getenv("RESPONDEO_QDRANT_COLLECTION"); collection != "" {
		config.Qdrant.Collection = collection
	}
	if batchSize := os.Getenv("RESPONDEO_QDRANT_UPSERT_BATCH_SIZE"); batchSize != "" {
		if bs, err := strconv.Atoi(batchSize); err == nil {
			config.Qdrant.UpsertBatchSize = bs
		}
	}

	// Retrieval configuration
	if topK := os.Getenv("RESPONDEO_RETRIEVAL_DEFAULT_TOP_K"); topK != "" {
		if tk, err := strconv.Atoi(topK); err == nil {
			config.Retrieval.DefaultTopK = tk
		}
	}
	if maxTopK := os.Getenv("RESPONDEO_RETRIEVAL_MAX_TOP_K"); maxTopK != "" {
		if mtk, err := strconv.Atoi(maxTopK); err == nil {
			config.Retrieval.MaxTopK = mtk
		}
	}
	if maxRetries := os.Getenv("RESPONDEO_RETRIEVAL_MAX_RETRIES"); maxRetries != "" {
		if mr, err := strconv.Atoi(maxRetries); err == nil {
			config.Retrieval.MaxRetries = mr
		}
	}
	if onExhausted := os.Getenv("RESPONDEO_RETRIEVAL_ON_EXHAUSTED_RETRIES"); onExhausted != "" {
		config.Retrieval.OnExhaustedRetries = onExhausted
	}

	// Gemini configuration
	if apiKey := os.Getenv("RESPONDEO_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("RESPONDEO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("RESPONDEO_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if temperature := os.Getenv("RESPONDEO_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("RESPONDEO_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // RESPONDEO_ prefix takes priority
	}
	if model := os.Getenv("RESPONDEO_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("RESPONDEO_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("RESPONDEO_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if temperature := os.Getenv("RESPONDEO_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("RESPONDEO_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	// Agent configuration
	if historySize := os.Getenv("RESPONDEO_AGENT_HISTORY_SIZE"); historySize != "" {
		if hs, err := strconv.Atoi(historySize); err == nil && hs >= 0 {
			config.Agent.HistorySize = hs
		}
	}

	// Scheduler configuration
	if enabled := os.Getenv("RESPONDEO_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
	if schedule := os.Getenv("RESPONDEO_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}

	// Sources configuration
	if sourcesDir := os.Getenv("RESPONDEO_SOURCES_DIR"); sourcesDir != "" {
		config.Sources.Dir = sourcesDir
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// Command-line flags have highest priority.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks cross-field configuration invariants that TOML parsing
// cannot express.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 {
		return fmt.Errorf("chunking.chunk_overlap must be non-negative, got %d", c.Chunking.ChunkOverlap)
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.chunk_overlap (%d) must be smaller than chunking.chunk_size (%d)",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize)
	}
	if c.Cohere.Dimension <= 0 {
		return fmt.Errorf("cohere.dimension must be positive, got %d", c.Cohere.Dimension)
	}
	if c.Cohere.BatchSize <= 0 || c.Cohere.BatchSize > 96 {
		return fmt.Errorf("cohere.batch_size must be in (0,96], got %d", c.Cohere.BatchSize)
	}
	switch c.Retrieval.OnExhaustedRetries {
	case "return_empty", "fail":
	default:
		return fmt.Errorf("retrieval.on_exhausted_retries must be \"return_empty\" or \"fail\", got %q",
			c.Retrieval.OnExhaustedRetries)
	}
	switch c.Crawler.OutputFormat {
	case "text", "markdown":
	default:
		return fmt.Errorf("crawler.output_format must be \"text\" or \"markdown\", got %q", c.Crawler.OutputFormat)
	}
	switch c.LLM.DefaultProvider {
	case LLMProviderGemini, LLMProviderClaude:
	default:
		return fmt.Errorf("llm.default_provider must be \"gemini\" or \"claude\", got %q", c.LLM.DefaultProvider)
	}
	return nil
}

// ValidateSchedule validates a cron schedule expression and ensures a minimum
// 5-minute interval so a misconfigured scheduler cannot hammer source sites.
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 6 {
		return fmt.Errorf("invalid cron format: expected 6 fields (with seconds)")
	}

	minuteField := parts[1]

	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}
	if strings.HasPrefix(minuteField, "*/") {
		interval, err := strconv.Atoi(strings.TrimPrefix(minuteField, "*/"))
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// AllowTestURLs returns true if test URLs (localhost, 127.0.0.1, etc.) are
// allowed. Test URLs are only allowed in development mode.
func (c *Config) AllowTestURLs() bool {
	return !c.IsProduction()
}
