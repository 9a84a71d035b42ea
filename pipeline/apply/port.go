package apply

import (
	"context"
	"time"

	"github.com/applyflow/applyflow/pipeline/application"
	"github.com/applyflow/applyflow/pkg/kernel"
)

type JobRepository interface {
	// CreateIfAbsent inserts a job unless the match already has one; the
	// job's ID is resolved to the existing row's on conflict. Returns
	// true when a row was inserted.
	CreateIfAbsent(ctx context.Context, job *ApplyJob) (bool, error)

	// GetByID retrieves a job by ID.
	GetByID(ctx context.Context, id kernel.JobID) (*ApplyJob, error)

	// ClaimForProcessing atomically moves a queued job to processing and
	// returns it. Returns ErrJobNotClaimable when the job is not queued,
	// so a job is never visible to two workers at once.
	ClaimForProcessing(ctx context.Context, id kernel.JobID) (*ApplyJob, error)

	// ScheduleRetry returns a processing job to queued with the attempt
	// count, last error and backoff deadline recorded durably.
	ScheduleRetry(ctx context.Context, id kernel.JobID, attempts int, lastError string, nextRetryAt time.Time) error

	// MarkAsFailed terminally fails a job, keeping the last error.
	MarkAsFailed(ctx context.Context, id kernel.JobID, attempts int, lastError string) error

	// MarkAsSucceeded moves a processing job to succeeded and writes the
	// application record in the same transaction. A crash before commit
	// leaves the job processing for the staleness sweep; an application
	// is therefore never recorded without its job marked succeeded.
	MarkAsSucceeded(ctx context.Context, job *ApplyJob, record *application.Record) error

	// ReclaimStale reports jobs needing re-delivery: processing rows
	// untouched past the grace period (crashed worker) are returned to
	// queued, and queued rows whose backoff deadline has passed or whose
	// delivery never landed are picked up again. Redis is a delivery
	// channel only; this is what makes the durable row authoritative.
	ReclaimStale(ctx context.Context, olderThan time.Duration) ([]kernel.JobID, error)

	// CountByStatus returns the number of jobs per status.
	CountByStatus(ctx context.Context) (map[JobStatus]int, error)
}

// JobQueue is the delivery channel in front of the durable job table. Only
// job IDs travel through it; workers always re-read the durable row.
type JobQueue interface {
	// Push makes a job immediately available to workers.
	Push(ctx context.Context, id kernel.JobID) error

	// Pop blocks up to timeout for the next available job. Returns an
	// empty ID when the timeout elapses.
	Pop(ctx context.Context, timeout time.Duration) (kernel.JobID, error)

	// PushDelayed makes a job available no earlier than readyAt.
	PushDelayed(ctx context.Context, id kernel.JobID, readyAt time.Time) error

	// MoveDue promotes delayed jobs whose time has come and reports how
	// many were promoted.
	MoveDue(ctx context.Context) (int, error)
}

// ApplyClient calls the external apply collaborator. Implementations must
// classify every outcome; they never panic and never return raw transport
// errors to the worker.
type ApplyClient interface {
	Apply(ctx context.Context, candidateID kernel.CandidateID, listingID kernel.ListingID) AttemptResult
}

// RateLimiter caps job starts across all workers over a rolling window.
type RateLimiter interface {
	// Allow reports whether one more job may start now.
	Allow(ctx context.Context) (bool, error)
}
