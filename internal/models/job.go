package models

import (
	"time"

	"github.com/google/uuid"
)

// Processing job statuses. Transitions are one-way:
// pending -> processing -> completed | failed.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ProcessingJob tracks the ingestion of a single URL. Jobs live in memory for
// the duration of a run; the badger export store persists them only when
// storage.export_jobs is enabled.
type ProcessingJob struct {
	ID  string `json:"id" badgerhold:"key"`
	URL string `json:"url" badgerhold:"index"`

	Status string `json:"status" badgerhold:"index"`
	Error  string `json:"error,omitempty"`

	// Progress counters, monotonically increasing
	ProcessedChunks int `json:"processed_chunks"`
	TotalChunks     int `json:"total_chunks"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewProcessingJob creates a pending job for a URL.
func NewProcessingJob(url string) *ProcessingJob {
	return &ProcessingJob{
		ID:        "job_" + uuid.New().String(),
		URL:       url,
		Status:    JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Start marks the job as processing.
func (j *ProcessingJob) Start() {
	now := time.Now().UTC()
	j.Status = JobStatusProcessing
	j.StartedAt = &now
}

// Complete marks the job as completed with final chunk counts.
func (j *ProcessingJob) Complete(processed, total int) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.ProcessedChunks = processed
	j.TotalChunks = total
	j.CompletedAt = &now
}

// Fail marks the job as failed with the error message.
func (j *ProcessingJob) Fail(err error) {
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	if err != nil {
		j.Error = err.Error()
	}
	j.CompletedAt = &now
}

// IsTerminal reports whether the job has finished, successfully or not.
func (j *ProcessingJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
