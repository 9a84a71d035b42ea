package matchinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/applyflow/applyflow/pipeline/match"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresAdapter implements match.Repository using PostgreSQL.
type PostgresAdapter struct {
	db *sqlx.DB
}

// NewPostgresAdapter creates a new PostgreSQL adapter for matches.
func NewPostgresAdapter(db *sqlx.DB) match.Repository {
	return &PostgresAdapter{db: db}
}

type matchModel struct {
	ID          string          `db:"id"`
	CandidateID string          `db:"candidate_id"`
	ListingID   string          `db:"listing_id"`
	Score       int             `db:"score"`
	Reasons     json.RawMessage `db:"reasons"`
	ReviewState string          `db:"review_state"`
	ReviewedAt  *time.Time      `db:"reviewed_at"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (m *matchModel) toEntity() (*match.Match, error) {
	entity := &match.Match{
		ID:          kernel.NewMatchID(m.ID),
		CandidateID: kernel.NewCandidateID(m.CandidateID),
		ListingID:   kernel.NewListingID(m.ListingID),
		Score:       m.Score,
		ReviewState: match.ReviewState(m.ReviewState),
		ReviewedAt:  m.ReviewedAt,
		CreatedAt:   m.CreatedAt,
	}
	if len(m.Reasons) > 0 {
		if err := json.Unmarshal(m.Reasons, &entity.Reasons); err != nil {
			return nil, match.ErrPersistenceFailed().WithDetail("error", "malformed reasons: "+err.Error())
		}
	}
	return entity, nil
}

func (a *PostgresAdapter) CreateIfAbsent(ctx context.Context, m *match.Match) (bool, error) {
	if m.ID.IsEmpty() {
		m.ID = kernel.NewMatchID(uuid.New().String())
	}
	if m.ReviewState == "" {
		m.ReviewState = match.ReviewStatePending
	}
	m.CreatedAt = time.Now()

	reasons, err := json.Marshal(m.Reasons)
	if err != nil {
		return false, match.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	query := `
		INSERT INTO matches (
			id, candidate_id, listing_id, score, reasons, review_state, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (candidate_id, listing_id) DO NOTHING`

	result, err := a.db.ExecContext(ctx, query,
		m.ID.String(), m.CandidateID.String(), m.ListingID.String(),
		m.Score, reasons, string(m.ReviewState), m.CreatedAt,
	)
	if err != nil {
		return false, match.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, match.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return rows > 0, nil
}

func (a *PostgresAdapter) GetByID(ctx context.Context, candidateID kernel.CandidateID, matchID kernel.MatchID) (*match.Match, error) {
	var model matchModel
	err := a.db.GetContext(ctx, &model,
		`SELECT * FROM matches WHERE id = $1 AND candidate_id = $2`,
		matchID.String(), candidateID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, match.ErrMatchNotFound().WithDetail("match_id", matchID.String())
		}
		return nil, match.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return model.toEntity()
}

func (a *PostgresAdapter) ListPending(ctx context.Context, candidateID kernel.CandidateID, pagination kernel.PaginationOptions) (*kernel.Paginated[match.Match], error) {
	return a.list(ctx, candidateID, pagination, true)
}

func (a *PostgresAdapter) ListReviewed(ctx context.Context, candidateID kernel.CandidateID, pagination kernel.PaginationOptions) (*kernel.Paginated[match.Match], error) {
	return a.list(ctx, candidateID, pagination, false)
}

func (a *PostgresAdapter) list(ctx context.Context, candidateID kernel.CandidateID, pagination kernel.PaginationOptions, pending bool) (*kernel.Paginated[match.Match], error) {
	pagination = pagination.Normalize()

	stateFilter := `review_state != 'pending'`
	if pending {
		stateFilter = `review_state = 'pending'`
	}

	var total int
	err := a.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM matches WHERE candidate_id = $1 AND `+stateFilter,
		candidateID.String())
	if err != nil {
		return nil, match.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	var models []matchModel
	err = a.db.SelectContext(ctx, &models, `
		SELECT * FROM matches
		WHERE candidate_id = $1 AND `+stateFilter+`
		ORDER BY score DESC, created_at DESC
		LIMIT $2 OFFSET $3`,
		candidateID.String(), pagination.PageSize, pagination.Offset())
	if err != nil {
		return nil, match.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	items := make([]match.Match, 0, len(models))
	for i := range models {
		entity, err := models[i].toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, *entity)
	}

	page := kernel.Page{Number: pagination.Page, Size: pagination.PageSize, Total: total}
	return kernel.NewPaginated(items, page), nil
}

// Review is a compare-and-set on review_state: only a pending row moves. A
// zero-row update is disambiguated with a follow-up read so concurrent
// duplicate reviews get ErrAlreadyReviewed, not ErrMatchNotFound.
func (a *PostgresAdapter) Review(ctx context.Context, candidateID kernel.CandidateID, matchID kernel.MatchID, state match.ReviewState) (*match.Match, error) {
	now := time.Now()
	result, err := a.db.ExecContext(ctx, `
		UPDATE matches
		SET review_state = $3, reviewed_at = $4
		WHERE id = $1 AND candidate_id = $2 AND review_state = 'pending'`,
		matchID.String(), candidateID.String(), string(state), now)
	if err != nil {
		return nil, match.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, match.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	if rows == 0 {
		existing, err := a.GetByID(ctx, candidateID, matchID)
		if err != nil {
			return nil, err
		}
		return nil, match.ErrAlreadyReviewed().
			WithDetail("match_id", matchID.String()).
			WithDetail("review_state", string(existing.ReviewState))
	}

	return a.GetByID(ctx, candidateID, matchID)
}
