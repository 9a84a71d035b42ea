package profileinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/applyflow/applyflow/pipeline/profile"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/jmoiron/sqlx"
)

// PostgresProfileRepository implements profile.Repository using PostgreSQL
type PostgresProfileRepository struct {
	db *sqlx.DB
}

// NewPostgresProfileRepository creates a new PostgreSQL profile repository
func NewPostgresProfileRepository(db *sqlx.DB) profile.Repository {
	return &PostgresProfileRepository{db: db}
}

type profileModel struct {
	CandidateID      string          `db:"candidate_id"`
	Skills           json.RawMessage `db:"skills"`
	DesiredTitles    json.RawMessage `db:"desired_titles"`
	RemotePreference string          `db:"remote_preference"`
	MinSalary        *int64          `db:"min_salary"`
	EmploymentTypes  json.RawMessage `db:"employment_types"`
	Degraded         bool            `db:"degraded"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (m *profileModel) toEntity() (*profile.CandidateProfile, error) {
	var skills []string
	if len(m.Skills) > 0 {
		if err := json.Unmarshal(m.Skills, &skills); err != nil {
			return nil, profile.ErrPersistenceFailed().
				WithDetail("field", "skills").
				WithDetail("error", err.Error())
		}
	}

	var titles []string
	if len(m.DesiredTitles) > 0 {
		if err := json.Unmarshal(m.DesiredTitles, &titles); err != nil {
			return nil, profile.ErrPersistenceFailed().
				WithDetail("field", "desired_titles").
				WithDetail("error", err.Error())
		}
	}

	var types []kernel.EmploymentType
	if len(m.EmploymentTypes) > 0 {
		if err := json.Unmarshal(m.EmploymentTypes, &types); err != nil {
			return nil, profile.ErrPersistenceFailed().
				WithDetail("field", "employment_types").
				WithDetail("error", err.Error())
		}
	}

	return &profile.CandidateProfile{
		CandidateID:      kernel.CandidateID(m.CandidateID),
		Skills:           skills,
		DesiredTitles:    titles,
		RemotePreference: kernel.RemotePreference(m.RemotePreference),
		MinSalary:        m.MinSalary,
		EmploymentTypes:  types,
		Degraded:         m.Degraded,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

func fromEntity(p *profile.CandidateProfile) (*profileModel, error) {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return nil, profile.ErrPersistenceFailed().
			WithDetail("field", "skills").
			WithDetail("error", err.Error())
	}

	titles, err := json.Marshal(p.DesiredTitles)
	if err != nil {
		return nil, profile.ErrPersistenceFailed().
			WithDetail("field", "desired_titles").
			WithDetail("error", err.Error())
	}

	types, err := json.Marshal(p.EmploymentTypes)
	if err != nil {
		return nil, profile.ErrPersistenceFailed().
			WithDetail("field", "employment_types").
			WithDetail("error", err.Error())
	}

	return &profileModel{
		CandidateID:      string(p.CandidateID),
		Skills:           skills,
		DesiredTitles:    titles,
		RemotePreference: string(p.RemotePreference),
		MinSalary:        p.MinSalary,
		EmploymentTypes:  types,
		Degraded:         p.Degraded,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}, nil
}

// Upsert creates or replaces the profile for a candidate. The unique
// candidate_id key guarantees at most one row per candidate.
func (r *PostgresProfileRepository) Upsert(ctx context.Context, p *profile.CandidateProfile) error {
	model, err := fromEntity(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO candidate_profiles (
			candidate_id, skills, desired_titles, remote_preference,
			min_salary, employment_types, degraded, created_at, updated_at
		) VALUES (
			:candidate_id, :skills, :desired_titles, :remote_preference,
			:min_salary, :employment_types, :degraded, :created_at, :updated_at
		)
		ON CONFLICT (candidate_id) DO UPDATE SET
			skills = EXCLUDED.skills,
			desired_titles = EXCLUDED.desired_titles,
			remote_preference = EXCLUDED.remote_preference,
			min_salary = EXCLUDED.min_salary,
			employment_types = EXCLUDED.employment_types,
			degraded = EXCLUDED.degraded,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return profile.ErrPersistenceFailed().
			WithDetail("candidate_id", p.CandidateID.String()).
			WithDetail("error", err.Error())
	}

	return nil
}

// GetByCandidateID retrieves the profile for a candidate
func (r *PostgresProfileRepository) GetByCandidateID(ctx context.Context, candidateID kernel.CandidateID) (*profile.CandidateProfile, error) {
	query := `
		SELECT
			candidate_id, skills, desired_titles, remote_preference,
			min_salary, employment_types, degraded, created_at, updated_at
		FROM candidate_profiles
		WHERE candidate_id = $1
	`

	var model profileModel
	err := r.db.GetContext(ctx, &model, query, candidateID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrProfileNotFound().
				WithDetail("candidate_id", candidateID.String())
		}
		return nil, profile.ErrPersistenceFailed().
			WithDetail("candidate_id", candidateID.String()).
			WithDetail("error", err.Error())
	}

	return model.toEntity()
}

// ListCandidateIDs returns every candidate with a stored profile
func (r *PostgresProfileRepository) ListCandidateIDs(ctx context.Context) ([]kernel.CandidateID, error) {
	query := `SELECT candidate_id FROM candidate_profiles ORDER BY candidate_id`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, profile.ErrPersistenceFailed().
			WithDetail("error", err.Error())
	}

	candidateIDs := make([]kernel.CandidateID, 0, len(ids))
	for _, id := range ids {
		candidateIDs = append(candidateIDs, kernel.CandidateID(id))
	}
	return candidateIDs, nil
}
