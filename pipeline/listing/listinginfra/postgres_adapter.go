package listinginfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/applyflow/applyflow/pipeline/listing"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// PostgresAdapter implements listing.Repository using PostgreSQL.
type PostgresAdapter struct {
	db *sqlx.DB
}

// NewPostgresAdapter creates a new PostgreSQL adapter for listings.
func NewPostgresAdapter(db *sqlx.DB) listing.Repository {
	return &PostgresAdapter{db: db}
}

// listingColumns deliberately excludes the embedding vector; it is only
// touched by UpdateEmbedding and the distance ordering in SemanticSearch.
const listingColumns = `id, source, external_id, title, company, location,
	remote_type, employment_type, description, salary_text,
	is_active, discovered_at, updated_at`

type listingModel struct {
	ID             string    `db:"id"`
	Source         string    `db:"source"`
	ExternalID     string    `db:"external_id"`
	Title          string    `db:"title"`
	Company        string    `db:"company"`
	Location       string    `db:"location"`
	RemoteType     string    `db:"remote_type"`
	EmploymentType string    `db:"employment_type"`
	Description    string    `db:"description"`
	SalaryText     string    `db:"salary_text"`
	IsActive       bool      `db:"is_active"`
	DiscoveredAt   time.Time `db:"discovered_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m *listingModel) toEntity() *listing.Listing {
	return &listing.Listing{
		ID:             kernel.NewListingID(m.ID),
		Source:         m.Source,
		ExternalID:     m.ExternalID,
		Title:          m.Title,
		Company:        m.Company,
		Location:       m.Location,
		RemoteType:     kernel.RemoteType(m.RemoteType),
		EmploymentType: kernel.EmploymentType(m.EmploymentType),
		Description:    m.Description,
		SalaryText:     m.SalaryText,
		IsActive:       m.IsActive,
		DiscoveredAt:   m.DiscoveredAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (a *PostgresAdapter) CreateIfAbsent(ctx context.Context, l *listing.Listing) (bool, error) {
	if l.ID.IsEmpty() {
		l.ID = kernel.NewListingID(uuid.New().String())
	}
	now := time.Now()
	l.DiscoveredAt = now
	l.UpdatedAt = now
	l.IsActive = true

	query := `
		INSERT INTO job_listings (
			id, source, external_id, title, company, location,
			remote_type, employment_type, description, salary_text,
			is_active, discovered_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (source, external_id) DO NOTHING`

	result, err := a.db.ExecContext(ctx, query,
		l.ID.String(), l.Source, l.ExternalID, l.Title, l.Company, l.Location,
		string(l.RemoteType), string(l.EmploymentType), l.Description, l.SalaryText,
		l.IsActive, l.DiscoveredAt, l.UpdatedAt,
	)
	if err != nil {
		return false, listing.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, listing.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	if rows == 0 {
		// Duplicate push; resolve the existing row's ID for the caller.
		var existingID string
		err := a.db.GetContext(ctx, &existingID,
			`SELECT id FROM job_listings WHERE source = $1 AND external_id = $2`,
			l.Source, l.ExternalID)
		if err != nil {
			return false, listing.ErrPersistenceFailed().WithDetail("error", err.Error())
		}
		l.ID = kernel.NewListingID(existingID)
		return false, nil
	}
	return true, nil
}

func (a *PostgresAdapter) GetByID(ctx context.Context, id kernel.ListingID) (*listing.Listing, error) {
	var model listingModel
	err := a.db.GetContext(ctx, &model,
		`SELECT `+listingColumns+` FROM job_listings WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, listing.ErrListingNotFound().WithDetail("listing_id", id.String())
		}
		return nil, listing.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return model.toEntity(), nil
}

func (a *PostgresAdapter) ListActive(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[listing.Listing], error) {
	pagination = pagination.Normalize()

	var total int
	err := a.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM job_listings WHERE is_active = true`)
	if err != nil {
		return nil, listing.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	var models []listingModel
	err = a.db.SelectContext(ctx, &models, `
		SELECT `+listingColumns+` FROM job_listings
		WHERE is_active = true
		ORDER BY discovered_at DESC
		LIMIT $1 OFFSET $2`,
		pagination.PageSize, pagination.Offset())
	if err != nil {
		return nil, listing.ErrPersistenceFailed().WithDetail("error", err.Error())
	}

	items := make([]listing.Listing, 0, len(models))
	for i := range models {
		items = append(items, *models[i].toEntity())
	}

	page := kernel.Page{Number: pagination.Page, Size: pagination.PageSize, Total: total}
	return kernel.NewPaginated(items, page), nil
}

func (a *PostgresAdapter) Deactivate(ctx context.Context, id kernel.ListingID) error {
	result, err := a.db.ExecContext(ctx,
		`UPDATE job_listings SET is_active = false, updated_at = $2 WHERE id = $1`,
		id.String(), time.Now())
	if err != nil {
		return listing.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return listing.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	if rows == 0 {
		return listing.ErrListingNotFound().WithDetail("listing_id", id.String())
	}
	return nil
}

func (a *PostgresAdapter) UpdateEmbedding(ctx context.Context, id kernel.ListingID, embedding kernel.ListingEmbedding) error {
	_, err := a.db.ExecContext(ctx,
		`UPDATE job_listings SET embedding = $2, updated_at = $3 WHERE id = $1`,
		id.String(), pgvector.NewVector(embedding), time.Now())
	if err != nil {
		return listing.ErrPersistenceFailed().WithDetail("error", err.Error())
	}
	return nil
}

func (a *PostgresAdapter) SemanticSearch(ctx context.Context, embedding kernel.ListingEmbedding, limit int) ([]listing.Listing, error) {
	if limit <= 0 {
		limit = 20
	}

	var models []listingModel
	err := a.db.SelectContext(ctx, &models, `
		SELECT `+listingColumns+` FROM job_listings
		WHERE is_active = true AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, listing.ErrSearchFailed().WithDetail("error", err.Error())
	}

	results := make([]listing.Listing, 0, len(models))
	for i := range models {
		results = append(results, *models[i].toEntity())
	}
	return results, nil
}
