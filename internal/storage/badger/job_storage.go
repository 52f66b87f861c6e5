package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// JobStorage persists processing jobs in Badger. Wired only when
// storage.export_jobs is enabled.
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

// SaveJob upserts a job record keyed by ID.
func (s *JobStorage) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	if job == nil {
		return fmt.Errorf("job is required")
	}
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}

	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *JobStorage) GetJob(ctx context.Context, id string) (*models.ProcessingJob, error) {
	var job models.ProcessingJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("job not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ListJobs returns jobs newest first, optionally filtered by status.
// limit <= 0 returns all.
func (s *JobStorage) ListJobs(ctx context.Context, status string, limit int) ([]*models.ProcessingJob, error) {
	query := badgerhold.Where("ID").Ne("")
	if status != "" {
		query = query.And("Status").Eq(status)
	}
	query = query.SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []models.ProcessingJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	result := make([]*models.ProcessingJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

// Close closes the backing database.
func (s *JobStorage) Close() error {
	return s.db.Close()
}
