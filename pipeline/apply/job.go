package apply

import (
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
)

// JobStatus is the durable lifecycle of an application job. A job moves
// queued -> processing -> succeeded, or back to queued for a retry, or to
// failed once attempts are exhausted. succeeded and failed are terminal.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the job can no longer change state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// ApplyJob is the durable unit of work created by an approved match. Exactly
// one job exists per match, enforced by the repository.
type ApplyJob struct {
	ID          kernel.JobID       `db:"id" json:"id"`
	CandidateID kernel.CandidateID `db:"candidate_id" json:"candidate_id"`
	ListingID   kernel.ListingID   `db:"listing_id" json:"listing_id"`
	MatchID     kernel.MatchID     `db:"match_id" json:"match_id"`

	Status   JobStatus `db:"status" json:"status"`
	Attempts int       `db:"attempts" json:"attempts"`

	// LastError holds the most recent attempt's failure, kept on retries
	// and terminal failures so the candidate can see what went wrong.
	LastError string `db:"last_error" json:"last_error,omitempty"`

	// NextRetryAt is the durable backoff deadline for a queued retry. The
	// staleness sweep re-delivers from it, so a lost queue entry never
	// strands the job.
	NextRetryAt *time.Time `db:"next_retry_at" json:"next_retry_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AttemptOutcome classifies one apply attempt.
type AttemptOutcome int

const (
	// AttemptSucceeded means the collaborator confirmed the application.
	AttemptSucceeded AttemptOutcome = iota
	// AttemptRetryable covers timeouts, network errors and 5xx-equivalent
	// responses; the job goes back to queued with backoff.
	AttemptRetryable
	// AttemptFatal covers rejections that retrying cannot fix; the job
	// fails immediately regardless of remaining attempts.
	AttemptFatal
)

// AttemptResult is the tagged outcome of one collaborator call.
type AttemptResult struct {
	Outcome        AttemptOutcome
	ApplicationRef string
	Err            error
}

// Succeeded builds a success result carrying the collaborator's reference.
func Succeeded(applicationRef string) AttemptResult {
	return AttemptResult{Outcome: AttemptSucceeded, ApplicationRef: applicationRef}
}

// RetryableFailure builds a result that re-queues the job with backoff.
func RetryableFailure(err error) AttemptResult {
	return AttemptResult{Outcome: AttemptRetryable, Err: err}
}

// FatalFailure builds a result that fails the job immediately.
func FatalFailure(err error) AttemptResult {
	return AttemptResult{Outcome: AttemptFatal, Err: err}
}

// BackoffDelay returns the wait before the given attempt number becomes
// eligible again: base, doubling per completed attempt.
func BackoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}
