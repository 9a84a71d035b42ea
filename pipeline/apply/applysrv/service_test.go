package applysrv

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/applyflow/applyflow/pipeline/application"
	"github.com/applyflow/applyflow/pipeline/apply"
	"github.com/applyflow/applyflow/pipeline/notify"
	"github.com/applyflow/applyflow/pkg/asyncx"
	"github.com/applyflow/applyflow/pkg/kernel"
)

type fakeJobRepo struct {
	jobs    map[kernel.JobID]*apply.ApplyJob
	byMatch map[kernel.MatchID]kernel.JobID
	records []*application.Record
	nextNum int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:    map[kernel.JobID]*apply.ApplyJob{},
		byMatch: map[kernel.MatchID]kernel.JobID{},
	}
}

func (r *fakeJobRepo) CreateIfAbsent(ctx context.Context, job *apply.ApplyJob) (bool, error) {
	if existing, ok := r.byMatch[job.MatchID]; ok {
		job.ID = existing
		return false, nil
	}
	r.nextNum++
	job.ID = kernel.NewJobID(fmt.Sprintf("job-%d", r.nextNum))
	job.Status = apply.JobStatusQueued
	job.Attempts = 0
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	clone := *job
	r.jobs[job.ID] = &clone
	r.byMatch[job.MatchID] = job.ID
	return true, nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id kernel.JobID) (*apply.ApplyJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, apply.ErrJobNotFound()
	}
	clone := *job
	return &clone, nil
}

func (r *fakeJobRepo) ClaimForProcessing(ctx context.Context, id kernel.JobID) (*apply.ApplyJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, apply.ErrJobNotFound()
	}
	if job.Status != apply.JobStatusQueued {
		return nil, apply.ErrJobNotClaimable()
	}
	job.Status = apply.JobStatusProcessing
	job.NextRetryAt = nil
	job.UpdatedAt = time.Now()
	clone := *job
	return &clone, nil
}

func (r *fakeJobRepo) ScheduleRetry(ctx context.Context, id kernel.JobID, attempts int, lastError string, nextRetryAt time.Time) error {
	job := r.jobs[id]
	job.Status = apply.JobStatusQueued
	job.Attempts = attempts
	job.LastError = lastError
	job.NextRetryAt = &nextRetryAt
	job.UpdatedAt = time.Now()
	return nil
}

func (r *fakeJobRepo) MarkAsFailed(ctx context.Context, id kernel.JobID, attempts int, lastError string) error {
	job := r.jobs[id]
	job.Status = apply.JobStatusFailed
	job.Attempts = attempts
	job.LastError = lastError
	job.UpdatedAt = time.Now()
	return nil
}

func (r *fakeJobRepo) MarkAsSucceeded(ctx context.Context, job *apply.ApplyJob, record *application.Record) error {
	stored := r.jobs[job.ID]
	if stored.Status != apply.JobStatusProcessing {
		return apply.ErrJobNotClaimable()
	}
	stored.Status = apply.JobStatusSucceeded
	stored.Attempts = job.Attempts
	stored.LastError = ""
	stored.UpdatedAt = time.Now()
	r.records = append(r.records, record)
	return nil
}

func (r *fakeJobRepo) ReclaimStale(ctx context.Context, olderThan time.Duration) ([]kernel.JobID, error) {
	now := time.Now()
	cutoff := now.Add(-olderThan)
	var ids []kernel.JobID
	for id, job := range r.jobs {
		switch {
		case job.Status == apply.JobStatusProcessing && job.UpdatedAt.Before(cutoff):
		case job.Status == apply.JobStatusQueued && job.NextRetryAt != nil && !job.NextRetryAt.After(now):
		case job.Status == apply.JobStatusQueued && job.NextRetryAt == nil && job.UpdatedAt.Before(cutoff):
		default:
			continue
		}
		job.Status = apply.JobStatusQueued
		job.NextRetryAt = nil
		job.UpdatedAt = now
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeJobRepo) CountByStatus(ctx context.Context) (map[apply.JobStatus]int, error) {
	counts := map[apply.JobStatus]int{}
	for _, job := range r.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

// fakeQueue records deliveries instead of going through Redis.
type fakeQueue struct {
	pushed  []kernel.JobID
	delayed []time.Duration
}

func (q *fakeQueue) Push(ctx context.Context, id kernel.JobID) error {
	q.pushed = append(q.pushed, id)
	return nil
}

func (q *fakeQueue) Pop(ctx context.Context, timeout time.Duration) (kernel.JobID, error) {
	return kernel.JobID(""), nil
}

func (q *fakeQueue) PushDelayed(ctx context.Context, id kernel.JobID, readyAt time.Time) error {
	q.pushed = append(q.pushed, id)
	q.delayed = append(q.delayed, time.Until(readyAt).Round(time.Second))
	return nil
}

func (q *fakeQueue) MoveDue(ctx context.Context) (int, error) { return 0, nil }

// scriptedClient returns canned results per attempt.
type scriptedClient struct {
	results []apply.AttemptResult
	calls   int
}

func (c *scriptedClient) Apply(ctx context.Context, candidateID kernel.CandidateID, listingID kernel.ListingID) apply.AttemptResult {
	var result apply.AttemptResult
	if c.calls < len(c.results) {
		result = c.results[c.calls]
	} else {
		result = c.results[len(c.results)-1]
	}
	c.calls++
	return result
}

type openLimiter struct{}

func (openLimiter) Allow(ctx context.Context) (bool, error) { return true, nil }

type closedLimiter struct{}

func (closedLimiter) Allow(ctx context.Context) (bool, error) { return false, nil }

func newTestService(t *testing.T, client apply.ApplyClient, limiter apply.RateLimiter) (*Service, *fakeJobRepo, *fakeQueue) {
	t.Helper()
	repo := newFakeJobRepo()
	queue := &fakeQueue{}
	tasks := asyncx.NewPool(1, 16, time.Second)
	t.Cleanup(tasks.Shutdown)

	svc := NewService(repo, queue, client, limiter, notify.NewLogNotifier(), tasks, Options{
		MaxAttempts: 3,
		BaseBackoff: 5 * time.Second,
	})
	return svc, repo, queue
}

func enqueueTestJob(t *testing.T, svc *Service) kernel.JobID {
	t.Helper()
	jobID, err := svc.EnqueueForMatch(context.Background(),
		kernel.NewCandidateID("cand-1"), kernel.NewListingID("list-1"), kernel.NewMatchID("match-1"))
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	return jobID
}

// drain processes every queued delivery like the worker loop would,
// treating delayed jobs as immediately due.
func drain(t *testing.T, svc *Service, queue *fakeQueue) {
	t.Helper()
	for i := 0; i < 20 && len(queue.pushed) > 0; i++ {
		id := queue.pushed[0]
		queue.pushed = queue.pushed[1:]
		if err := svc.ProcessJob(context.Background(), id); err != nil {
			t.Fatalf("process job %s: %v", id, err)
		}
	}
}

func TestEnqueueIsIdempotentPerMatch(t *testing.T) {
	svc, repo, _ := newTestService(t, &scriptedClient{results: []apply.AttemptResult{apply.Succeeded("ref")}}, openLimiter{})

	first := enqueueTestJob(t, svc)
	second := enqueueTestJob(t, svc)

	if first != second {
		t.Fatalf("expected the same job for repeated enqueue, got %s and %s", first, second)
	}
	if len(repo.jobs) != 1 {
		t.Fatalf("expected 1 durable job, got %d", len(repo.jobs))
	}
}

func TestFailTwiceThenSucceed(t *testing.T) {
	client := &scriptedClient{results: []apply.AttemptResult{
		apply.RetryableFailure(errors.New("timeout")),
		apply.RetryableFailure(errors.New("503")),
		apply.Succeeded("app-ref-1"),
	}}
	svc, repo, queue := newTestService(t, client, openLimiter{})

	jobID := enqueueTestJob(t, svc)
	drain(t, svc, queue)

	job := repo.jobs[jobID]
	if job.Status != apply.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s (last error %q)", job.Status, job.LastError)
	}
	if job.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", job.Attempts)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected exactly 1 application record, got %d", len(repo.records))
	}
	if repo.records[0].ApplicationRef != "app-ref-1" {
		t.Errorf("record carries wrong ref: %q", repo.records[0].ApplicationRef)
	}

	// Two retries, backoff doubling from the base.
	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(queue.delayed) != len(want) {
		t.Fatalf("expected %d backoff delays, got %v", len(want), queue.delayed)
	}
	for i, d := range want {
		if queue.delayed[i] != d {
			t.Errorf("delay %d: expected %s, got %s", i, d, queue.delayed[i])
		}
	}
}

func TestExhaustedAttemptsFailTerminally(t *testing.T) {
	client := &scriptedClient{results: []apply.AttemptResult{
		apply.RetryableFailure(errors.New("connection refused")),
	}}
	svc, repo, queue := newTestService(t, client, openLimiter{})

	jobID := enqueueTestJob(t, svc)
	drain(t, svc, queue)

	job := repo.jobs[jobID]
	if job.Status != apply.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", job.Attempts)
	}
	if job.LastError != "connection refused" {
		t.Errorf("expected last error retained, got %q", job.LastError)
	}
	if len(repo.records) != 0 {
		t.Fatalf("failed job must not create records, got %d", len(repo.records))
	}
	if client.calls != 3 {
		t.Errorf("expected 3 collaborator calls, got %d", client.calls)
	}

	// A terminal job never retries: another delivery is a no-op.
	if err := svc.ProcessJob(context.Background(), jobID); err != nil {
		t.Fatalf("redelivery errored: %v", err)
	}
	if client.calls != 3 {
		t.Errorf("terminal job was retried: %d calls", client.calls)
	}
}

func TestFatalFailureSkipsRetries(t *testing.T) {
	client := &scriptedClient{results: []apply.AttemptResult{
		apply.FatalFailure(errors.New("account banned")),
	}}
	svc, repo, queue := newTestService(t, client, openLimiter{})

	jobID := enqueueTestJob(t, svc)
	drain(t, svc, queue)

	job := repo.jobs[jobID]
	if job.Status != apply.JobStatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.Attempts != 1 {
		t.Errorf("fatal failure must not retry, got %d attempts", job.Attempts)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 collaborator call, got %d", client.calls)
	}
}

func TestRateLimitDefersWithoutAttempt(t *testing.T) {
	client := &scriptedClient{results: []apply.AttemptResult{apply.Succeeded("ref")}}
	svc, repo, queue := newTestService(t, client, closedLimiter{})

	jobID := enqueueTestJob(t, svc)

	// One delivery under a closed limiter: deferred, not attempted.
	id := queue.pushed[0]
	queue.pushed = queue.pushed[1:]
	if err := svc.ProcessJob(context.Background(), id); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if client.calls != 0 {
		t.Fatalf("rate-limited job must not reach the collaborator, got %d calls", client.calls)
	}
	job := repo.jobs[jobID]
	if job.Status != apply.JobStatusQueued || job.Attempts != 0 {
		t.Fatalf("deferred job must stay queued with 0 attempts, got %s/%d", job.Status, job.Attempts)
	}
	if len(queue.pushed) != 1 {
		t.Fatalf("deferred job must be redelivered, queue has %d entries", len(queue.pushed))
	}
}

// A retry whose queue delivery is lost must still run: the backoff deadline
// lives on the durable row and the staleness sweep re-delivers from it.
func TestLostRetryDeliveryRecoveredBySweep(t *testing.T) {
	client := &scriptedClient{results: []apply.AttemptResult{
		apply.RetryableFailure(errors.New("gateway timeout")),
		apply.Succeeded("app-ref-2"),
	}}
	repo := newFakeJobRepo()
	queue := &fakeQueue{}
	tasks := asyncx.NewPool(1, 16, time.Second)
	t.Cleanup(tasks.Shutdown)
	svc := NewService(repo, queue, client, openLimiter{}, notify.NewLogNotifier(), tasks, Options{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	})

	jobID := enqueueTestJob(t, svc)
	id := queue.pushed[0]
	queue.pushed = queue.pushed[1:]
	if err := svc.ProcessJob(context.Background(), id); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	job := repo.jobs[jobID]
	if job.Status != apply.JobStatusQueued || job.Attempts != 1 {
		t.Fatalf("expected queued after retryable failure, got %s/%d", job.Status, job.Attempts)
	}
	if job.NextRetryAt == nil {
		t.Fatal("retry must record its deadline on the durable row")
	}

	// The delayed entry never comes back from the queue.
	queue.pushed = nil
	queue.delayed = nil

	// Wait out the backoff, then sweep. The grace period is deliberately
	// huge: only the recorded deadline can trigger the re-delivery.
	time.Sleep(5 * time.Millisecond)
	if err := svc.ReclaimStale(context.Background(), time.Hour); err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if len(queue.pushed) != 1 {
		t.Fatalf("expected the overdue job re-delivered, queue has %d entries", len(queue.pushed))
	}

	drain(t, svc, queue)

	job = repo.jobs[jobID]
	if job.Status != apply.JobStatusSucceeded {
		t.Fatalf("expected succeeded after recovery, got %s (last error %q)", job.Status, job.LastError)
	}
	if job.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", job.Attempts)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected 1 application record, got %d", len(repo.records))
	}
}

func TestBackoffDelayDoubles(t *testing.T) {
	base := 5 * time.Second
	want := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 40 * time.Second}
	for i, expected := range want {
		if got := apply.BackoffDelay(base, i+1); got != expected {
			t.Errorf("attempt %d: expected %s, got %s", i+1, expected, got)
		}
	}
}
