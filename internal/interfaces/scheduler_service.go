package interfaces

import "time"

// SchedulerService defines the interface for the periodic re-ingestion
// scheduler.
type SchedulerService interface {
	// Start begins scheduled re-ingestion with the configured cron expression.
	Start() error

	// Stop halts the scheduler. A cycle in progress completes.
	Stop() error

	// IsRunning returns true if the scheduler is active.
	IsRunning() bool

	// NextRun returns the next scheduled run time, or zero when not running.
	NextRun() time.Time

	// TriggerNow runs a re-ingestion cycle immediately in the background.
	TriggerNow()
}
