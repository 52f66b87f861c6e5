package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// JobStorage persists processing jobs for inspection across restarts.
// Only wired when storage.export_jobs is enabled; the pipeline otherwise
// tracks jobs in memory.
type JobStorage interface {
	SaveJob(ctx context.Context, job *models.ProcessingJob) error
	GetJob(ctx context.Context, id string) (*models.ProcessingJob, error)
	ListJobs(ctx context.Context, status string, limit int) ([]*models.ProcessingJob, error)
	Close() error
}
