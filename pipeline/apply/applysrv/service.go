package applysrv

import (
	"context"
	"time"

	"github.com/applyflow/applyflow/pipeline/application"
	"github.com/applyflow/applyflow/pipeline/apply"
	"github.com/applyflow/applyflow/pipeline/notify"
	"github.com/applyflow/applyflow/pkg/asyncx"
	"github.com/applyflow/applyflow/pkg/errx"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/applyflow/applyflow/pkg/logx"
)

// Options tunes the retry and throughput behavior of the queue.
type Options struct {
	MaxAttempts  int
	BaseBackoff  time.Duration
	ApplyTimeout time.Duration

	// RateLimitRedelay is how long a job deferred by the rate limiter
	// waits before redelivery. Deferral does not consume an attempt.
	RateLimitRedelay time.Duration
}

// Service runs the durable application queue.
type Service struct {
	jobs     apply.JobRepository
	queue    apply.JobQueue
	client   apply.ApplyClient
	limiter  apply.RateLimiter
	notifier notify.Notifier
	tasks    *asyncx.Pool
	opts     Options
}

// NewService creates a new application queue service.
func NewService(
	jobs apply.JobRepository,
	queue apply.JobQueue,
	client apply.ApplyClient,
	limiter apply.RateLimiter,
	notifier notify.Notifier,
	tasks *asyncx.Pool,
	opts Options,
) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 5 * time.Second
	}
	if opts.ApplyTimeout <= 0 {
		opts.ApplyTimeout = 30 * time.Second
	}
	if opts.RateLimitRedelay <= 0 {
		opts.RateLimitRedelay = 5 * time.Second
	}
	return &Service{
		jobs:     jobs,
		queue:    queue,
		client:   client,
		limiter:  limiter,
		notifier: notifier,
		tasks:    tasks,
		opts:     opts,
	}
}

// EnqueueForMatch creates the durable job for an approved match and makes
// it visible to workers. The unique match constraint means a repeated call
// returns the existing job instead of creating a second one; the push is
// repeated anyway because a duplicate queue entry is absorbed by the claim.
func (s *Service) EnqueueForMatch(ctx context.Context, candidateID kernel.CandidateID, listingID kernel.ListingID, matchID kernel.MatchID) (kernel.JobID, error) {
	job := &apply.ApplyJob{
		CandidateID: candidateID,
		ListingID:   listingID,
		MatchID:     matchID,
	}
	created, err := s.jobs.CreateIfAbsent(ctx, job)
	if err != nil {
		return kernel.JobID(""), err
	}
	if created {
		logx.Infof("Enqueued application job %s for match %s", job.ID.String(), matchID.String())
	}

	if err := s.queue.Push(ctx, job.ID); err != nil {
		// The durable row exists; the caller can retry the push.
		return kernel.JobID(""), err
	}
	return job.ID, nil
}

// ProcessJob handles one delivery of a job ID. The durable row is always
// re-read and claimed with a compare-and-set, so duplicate deliveries and
// deliveries for already-terminal jobs fall through harmlessly.
func (s *Service) ProcessJob(ctx context.Context, jobID kernel.JobID) error {
	allowed, err := s.limiter.Allow(ctx)
	if err != nil {
		return err
	}
	if !allowed {
		// Over the rolling window cap. Defer without claiming; attempts
		// are untouched.
		return s.queue.PushDelayed(ctx, jobID, time.Now().Add(s.opts.RateLimitRedelay))
	}

	job, err := s.jobs.ClaimForProcessing(ctx, jobID)
	if err != nil {
		if errx.IsType(err, errx.TypeConflict) || errx.IsType(err, errx.TypeNotFound) {
			logx.Debugf("Skipping delivery for job %s: %v", jobID.String(), err)
			return nil
		}
		return err
	}

	job.Attempts++
	result := s.attempt(ctx, job)

	switch result.Outcome {
	case apply.AttemptSucceeded:
		return s.finishSucceeded(ctx, job, result.ApplicationRef)
	case apply.AttemptFatal:
		return s.finishFailed(ctx, job, result.Err.Error())
	default:
		if job.Attempts >= s.opts.MaxAttempts {
			return s.finishFailed(ctx, job, result.Err.Error())
		}
		return s.scheduleRetry(ctx, job, result.Err.Error())
	}
}

// attempt calls the collaborator with the per-attempt timeout.
func (s *Service) attempt(ctx context.Context, job *apply.ApplyJob) apply.AttemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, s.opts.ApplyTimeout)
	defer cancel()
	return s.client.Apply(attemptCtx, job.CandidateID, job.ListingID)
}

// finishSucceeded commits the terminal transition atomically with the
// application record. The record is written in the same transaction, never
// after, so a crash cannot lose a completed application.
func (s *Service) finishSucceeded(ctx context.Context, job *apply.ApplyJob, applicationRef string) error {
	record := application.NewRecord(job.CandidateID, job.ListingID, job.ID, applicationRef)
	if err := s.jobs.MarkAsSucceeded(ctx, job, record); err != nil {
		if errx.IsType(err, errx.TypeConflict) {
			// The stale sweep reclaimed the job mid-attempt; the retry
			// owns the outcome now.
			logx.Warnf("Lost claim on job %s before success commit", job.ID.String())
			return nil
		}
		return err
	}
	logx.Infof("Application job %s succeeded on attempt %d (ref %q)",
		job.ID.String(), job.Attempts, applicationRef)
	s.notifyFinished(job, true, "application submitted")
	return nil
}

func (s *Service) finishFailed(ctx context.Context, job *apply.ApplyJob, lastError string) error {
	if err := s.jobs.MarkAsFailed(ctx, job.ID, job.Attempts, lastError); err != nil {
		return err
	}
	logx.Warnf("Application job %s failed after %d attempts: %s",
		job.ID.String(), job.Attempts, lastError)
	s.notifyFinished(job, false, lastError)
	return nil
}

// scheduleRetry persists the backoff deadline before touching the queue. If
// the delayed push is lost, the staleness sweep re-delivers the job from the
// durable deadline.
func (s *Service) scheduleRetry(ctx context.Context, job *apply.ApplyJob, lastError string) error {
	delay := apply.BackoffDelay(s.opts.BaseBackoff, job.Attempts)
	readyAt := time.Now().Add(delay)
	if err := s.jobs.ScheduleRetry(ctx, job.ID, job.Attempts, lastError, readyAt); err != nil {
		return err
	}
	logx.Infof("Application job %s attempt %d failed, retrying in %s: %s",
		job.ID.String(), job.Attempts, delay, lastError)
	return s.queue.PushDelayed(ctx, job.ID, readyAt)
}

// ReclaimStale re-delivers jobs the queue lost track of: crashed workers'
// processing rows and queued rows past their durable retry deadline.
func (s *Service) ReclaimStale(ctx context.Context, olderThan time.Duration) error {
	ids, err := s.jobs.ReclaimStale(ctx, olderThan)
	if err != nil {
		return err
	}
	for _, id := range ids {
		logx.Warnf("Reclaimed stale application job %s", id.String())
		if err := s.queue.Push(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// GetJobStatus returns a candidate's job. Foreign jobs read as not found.
func (s *Service) GetJobStatus(ctx context.Context, candidateID kernel.CandidateID, jobID kernel.JobID) (*apply.JobStatusResponse, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CandidateID != candidateID {
		return nil, apply.ErrJobNotFound().WithDetail("job_id", jobID.String())
	}
	resp := job.ToResponse()
	return &resp, nil
}

// GetQueueDepth reports job counts per status.
func (s *Service) GetQueueDepth(ctx context.Context) (*apply.QueueDepthResponse, error) {
	counts, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &apply.QueueDepthResponse{
		Queued:     counts[apply.JobStatusQueued],
		Processing: counts[apply.JobStatusProcessing],
		Succeeded:  counts[apply.JobStatusSucceeded],
		Failed:     counts[apply.JobStatusFailed],
	}, nil
}

func (s *Service) notifyFinished(job *apply.ApplyJob, succeeded bool, detail string) {
	candidateID, jobID := job.CandidateID, job.ID
	s.tasks.Submit("notify_apply_finished", func(ctx context.Context) error {
		return s.notifier.ApplyFinished(ctx, candidateID, jobID, succeeded, detail)
	})
}
