package applyinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/applyflow/applyflow/pipeline/application"
	"github.com/applyflow/applyflow/pipeline/apply"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresJobRepository implements apply.JobRepository using PostgreSQL.
type PostgresJobRepository struct {
	db *sqlx.DB
}

// NewPostgresJobRepository creates a new PostgreSQL adapter for apply jobs.
func NewPostgresJobRepository(db *sqlx.DB) apply.JobRepository {
	return &PostgresJobRepository{db: db}
}

type jobModel struct {
	ID          string     `db:"id"`
	CandidateID string     `db:"candidate_id"`
	ListingID   string     `db:"listing_id"`
	MatchID     string     `db:"match_id"`
	Status      string     `db:"status"`
	Attempts    int        `db:"attempts"`
	LastError   string     `db:"last_error"`
	NextRetryAt *time.Time `db:"next_retry_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (m *jobModel) toEntity() *apply.ApplyJob {
	return &apply.ApplyJob{
		ID:          kernel.NewJobID(m.ID),
		CandidateID: kernel.NewCandidateID(m.CandidateID),
		ListingID:   kernel.NewListingID(m.ListingID),
		MatchID:     kernel.NewMatchID(m.MatchID),
		Status:      apply.JobStatus(m.Status),
		Attempts:    m.Attempts,
		LastError:   m.LastError,
		NextRetryAt: m.NextRetryAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *PostgresJobRepository) CreateIfAbsent(ctx context.Context, job *apply.ApplyJob) (bool, error) {
	if job.ID.IsEmpty() {
		job.ID = kernel.NewJobID(uuid.New().String())
	}
	now := time.Now()
	job.Status = apply.JobStatusQueued
	job.Attempts = 0
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `
		INSERT INTO apply_jobs (
			id, candidate_id, listing_id, match_id, status, attempts, last_error, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, '', $7, $8
		)
		ON CONFLICT (match_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		job.ID.String(), job.CandidateID.String(), job.ListingID.String(), job.MatchID.String(),
		string(job.Status), job.Attempts, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return false, apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	if rows == 0 {
		var existingID string
		err := r.db.GetContext(ctx, &existingID,
			`SELECT id FROM apply_jobs WHERE match_id = $1`, job.MatchID.String())
		if err != nil {
			return false, apply.ErrPersistenceFailed().WithDetail("error", err.Error())
		}
		job.ID = kernel.NewJobID(existingID)
		return false, nil
	}
	return true, nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id kernel.JobID) (*apply.ApplyJob, error) {
	var model jobModel
	err := r.db.GetContext(ctx, &model,
		`SELECT * FROM apply_jobs WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apply.ErrJobNotFound().WithDetail("job_id", id.String())
		}
		return nil, apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return model.toEntity(), nil
}

// ClaimForProcessing is the atomic claim that keeps a job on one worker:
// the compare-and-set on status only succeeds for a queued row, and the
// RETURNING clause hands back the claimed state in the same statement.
func (r *PostgresJobRepository) ClaimForProcessing(ctx context.Context, id kernel.JobID) (*apply.ApplyJob, error) {
	var model jobModel
	err := r.db.GetContext(ctx, &model, `
		UPDATE apply_jobs
		SET status = 'processing', next_retry_at = NULL, updated_at = $2
		WHERE id = $1 AND status = 'queued'
		RETURNING *`,
		id.String(), time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apply.ErrJobNotClaimable().WithDetail("job_id", id.String())
		}
		return nil, apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return model.toEntity(), nil
}

// ScheduleRetry records the backoff deadline on the row itself, not just in
// the delayed queue, so eligibility survives a lost queue entry.
func (r *PostgresJobRepository) ScheduleRetry(ctx context.Context, id kernel.JobID, attempts int, lastError string, nextRetryAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE apply_jobs
		SET status = 'queued', attempts = $2, last_error = $3, next_retry_at = $4, updated_at = $5
		WHERE id = $1 AND status = 'processing'`,
		id.String(), attempts, lastError, nextRetryAt, time.Now())
	if err != nil {
		return apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return nil
}

func (r *PostgresJobRepository) MarkAsFailed(ctx context.Context, id kernel.JobID, attempts int, lastError string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE apply_jobs
		SET status = 'failed', attempts = $2, last_error = $3, updated_at = $4
		WHERE id = $1 AND status = 'processing'`,
		id.String(), attempts, lastError, time.Now())
	if err != nil {
		return apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return nil
}

// MarkAsSucceeded commits the terminal transition and the application
// record together. Losing the claim (stale sweep reclaimed the job) aborts
// the transaction; the retry will call the collaborator again, which is the
// documented at-least-once tradeoff.
func (r *PostgresJobRepository) MarkAsSucceeded(ctx context.Context, job *apply.ApplyJob, record *application.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE apply_jobs
		SET status = 'succeeded', attempts = $2, last_error = '', updated_at = $3
		WHERE id = $1 AND status = 'processing'`,
		job.ID.String(), job.Attempts, time.Now())
	if err != nil {
		return apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	if rows == 0 {
		return apply.ErrJobNotClaimable().WithDetail("job_id", job.ID.String())
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO application_records (
			id, candidate_id, listing_id, job_id, application_ref, applied_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO NOTHING`,
		record.ID.String(), record.CandidateID.String(), record.ListingID.String(),
		record.JobID.String(), record.ApplicationRef, record.AppliedAt)
	if err != nil {
		return apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	if err := tx.Commit(); err != nil {
		return apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return nil
}

// ReclaimStale covers all three ways a job can fall out of delivery: a
// worker that died mid-processing, a retry whose delayed-queue entry was
// lost after its deadline passed, and a queued row whose initial push never
// reached the queue. Re-delivering a job that is still in the queue is
// harmless; the second delivery loses the claim compare-and-set.
func (r *PostgresJobRepository) ReclaimStale(ctx context.Context, olderThan time.Duration) ([]kernel.JobID, error) {
	now := time.Now()
	cutoff := now.Add(-olderThan)

	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		UPDATE apply_jobs
		SET status = 'queued', next_retry_at = NULL, updated_at = $2
		WHERE (status = 'processing' AND updated_at < $1)
		   OR (status = 'queued' AND next_retry_at IS NOT NULL AND next_retry_at <= $2)
		   OR (status = 'queued' AND next_retry_at IS NULL AND updated_at < $1)
		RETURNING id`,
		cutoff, now)
	if err != nil {
		return nil, apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	jobIDs := make([]kernel.JobID, 0, len(ids))
	for _, id := range ids {
		jobIDs = append(jobIDs, kernel.NewJobID(id))
	}
	return jobIDs, nil
}

func (r *PostgresJobRepository) CountByStatus(ctx context.Context) (map[apply.JobStatus]int, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM apply_jobs GROUP BY status`)
	if err != nil {
		return nil, apply.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	counts := make(map[apply.JobStatus]int, len(rows))
	for _, row := range rows {
		counts[apply.JobStatus(row.Status)] = row.Count
	}
	return counts, nil
}
