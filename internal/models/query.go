package models

import "time"

// API error codes returned at the query boundary.
const (
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeAgentUnavailable  = "AGENT_UNAVAILABLE"
	ErrCodeRequestTimeout    = "REQUEST_TIMEOUT"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeSchedulerDisabled = "SCHEDULER_DISABLED"
)

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query    string                 `json:"query" validate:"required,min=1,max=10000"`
	TopK     int                    `json:"top_k,omitempty" validate:"omitempty,min=1"`
	Format   string                 `json:"format,omitempty" validate:"omitempty,oneof=markdown html"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// QueryResponse is the success body of POST /api/query. Sources lists the
// distinct source URLs of the chunks the answer was grounded on.
type QueryResponse struct {
	Response  string                 `json:"response"`
	Sources   []string               `json:"sources"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ErrorResponse is the only error body shape the API emits.
type ErrorResponse struct {
	ErrorCode string                 `json:"error_code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// IngestRequest is the body of POST /api/ingest. Exactly one of URL, URLs, or
// SitemapURL must be set; Include/Exclude apply only to sitemap ingestion.
type IngestRequest struct {
	URL        string   `json:"url,omitempty" validate:"omitempty,url"`
	URLs       []string `json:"urls,omitempty" validate:"omitempty,dive,url"`
	SitemapURL string   `json:"sitemap_url,omitempty" validate:"omitempty,url"`
	Include    []string `json:"include,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
	Crawl      bool     `json:"crawl,omitempty"`    // Follow same-domain links from the given URL
	MaxPages   int      `json:"max_pages,omitempty"`
}

// IngestResponse summarizes an ingestion run.
type IngestResponse struct {
	JobIDs    []string  `json:"job_ids"`
	Accepted  int       `json:"accepted"`
	Timestamp time.Time `json:"timestamp"`
}

// RetrievalMetrics carries timing and volume figures for one retrieval.
type RetrievalMetrics struct {
	RetrievalTimeMs int64 `json:"retrieval_time_ms"`
	TotalChunks     int   `json:"total_chunks"`
}

// ValidationResults reports the per-batch integrity checks applied to
// retrieved chunks. A single bad chunk fails MetadataMatch for the batch.
type ValidationResults struct {
	ConnectionSuccess bool `json:"connection_success"`
	MetadataMatch     bool `json:"metadata_match"`
	ContentRelevance  bool `json:"content_relevance"`
	OverallValidation bool `json:"overall_validation"`
}

// RetrievalResult is the full outcome of one retrieval pass.
type RetrievalResult struct {
	Query             string            `json:"query"`
	RetrievedChunks   []RetrievedChunk  `json:"retrieved_chunks"`
	ValidationResults ValidationResults `json:"validation_results"`
	Metrics           RetrievalMetrics  `json:"metrics"`
	Error             string            `json:"error,omitempty"`
}
