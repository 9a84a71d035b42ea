package applicationinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/applyflow/applyflow/pipeline/application"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/jmoiron/sqlx"
)

// PostgresAdapter implements application.Repository using PostgreSQL.
type PostgresAdapter struct {
	db *sqlx.DB
}

// NewPostgresAdapter creates a new PostgreSQL adapter for application records.
func NewPostgresAdapter(db *sqlx.DB) application.Repository {
	return &PostgresAdapter{db: db}
}

type recordModel struct {
	ID             string    `db:"id"`
	CandidateID    string    `db:"candidate_id"`
	ListingID      string    `db:"listing_id"`
	JobID          string    `db:"job_id"`
	ApplicationRef string    `db:"application_ref"`
	AppliedAt      time.Time `db:"applied_at"`
}

func (m *recordModel) toEntity() *application.Record {
	return &application.Record{
		ID:             kernel.NewApplicationID(m.ID),
		CandidateID:    kernel.NewCandidateID(m.CandidateID),
		ListingID:      kernel.NewListingID(m.ListingID),
		JobID:          kernel.NewJobID(m.JobID),
		ApplicationRef: m.ApplicationRef,
		AppliedAt:      m.AppliedAt,
	}
}

func (a *PostgresAdapter) GetByID(ctx context.Context, candidateID kernel.CandidateID, id kernel.ApplicationID) (*application.Record, error) {
	var model recordModel
	err := a.db.GetContext(ctx, &model,
		`SELECT * FROM application_records WHERE id = $1 AND candidate_id = $2`,
		id.String(), candidateID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, application.ErrRecordNotFound().WithDetail("application_id", id.String())
		}
		return nil, application.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return model.toEntity(), nil
}

func (a *PostgresAdapter) ListByCandidate(ctx context.Context, candidateID kernel.CandidateID, pagination kernel.PaginationOptions) (*kernel.Paginated[application.Record], error) {
	pagination = pagination.Normalize()

	var total int
	err := a.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM application_records WHERE candidate_id = $1`,
		candidateID.String())
	if err != nil {
		return nil, application.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	var models []recordModel
	err = a.db.SelectContext(ctx, &models, `
		SELECT * FROM application_records
		WHERE candidate_id = $1
		ORDER BY applied_at DESC
		LIMIT $2 OFFSET $3`,
		candidateID.String(), pagination.PageSize, pagination.Offset())
	if err != nil {
		return nil, application.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	items := make([]application.Record, 0, len(models))
	for i := range models {
		items = append(items, *models[i].toEntity())
	}

	page := kernel.Page{Number: pagination.Page, Size: pagination.PageSize, Total: total}
	return kernel.NewPaginated(items, page), nil
}
