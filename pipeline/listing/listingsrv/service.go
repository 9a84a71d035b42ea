package listingsrv

import (
	"context"
	"strings"

	"github.com/applyflow/applyflow/pipeline/listing"
	"github.com/applyflow/applyflow/pkg/asyncx"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/applyflow/applyflow/pkg/logx"
)

// Service handles job listing ingestion and search.
type Service struct {
	repo       listing.Repository
	embeddings listing.EmbeddingGenerator
	tasks      *asyncx.Pool
}

// NewService creates a new listing service.
func NewService(repo listing.Repository, embeddings listing.EmbeddingGenerator, tasks *asyncx.Pool) *Service {
	return &Service{
		repo:       repo,
		embeddings: embeddings,
		tasks:      tasks,
	}
}

// Ingest stores a pushed listing. Re-pushing the same (source, external_id)
// is a no-op that returns the existing row's ID.
func (s *Service) Ingest(ctx context.Context, req listing.IngestListingRequest) (*listing.IngestListingResponse, error) {
	if err := validateIngest(req); err != nil {
		return nil, err
	}

	l := &listing.Listing{
		Source:         strings.TrimSpace(req.Source),
		ExternalID:     strings.TrimSpace(req.ExternalID),
		Title:          strings.TrimSpace(req.Title),
		Company:        strings.TrimSpace(req.Company),
		Location:       strings.TrimSpace(req.Location),
		RemoteType:     kernel.RemoteType(req.RemoteType),
		EmploymentType: kernel.EmploymentType(req.EmploymentType),
		Description:    req.Description,
		SalaryText:     strings.TrimSpace(req.SalaryText),
	}

	created, err := s.repo.CreateIfAbsent(ctx, l)
	if err != nil {
		return nil, err
	}

	if created {
		logx.Infof("Ingested listing %s (%s/%s): %s at %s",
			l.ID.String(), l.Source, l.ExternalID, l.Title, l.Company)
		s.scheduleEmbedding(l.ID, l.SearchText())
	}

	return &listing.IngestListingResponse{ID: l.ID, Created: created}, nil
}

// GetListing retrieves a listing by ID.
func (s *Service) GetListing(ctx context.Context, id kernel.ListingID) (*listing.ListingResponse, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := l.ToResponse()
	return &resp, nil
}

// ListActive returns active listings, newest first.
func (s *Service) ListActive(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[listing.ListingResponse], error) {
	page, err := s.repo.ListActive(ctx, pagination)
	if err != nil {
		return nil, err
	}

	responses := make([]listing.ListingResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, page.Items[i].ToResponse())
	}
	return kernel.NewPaginated(responses, page.Page), nil
}

// Deactivate marks a listing closed. Existing matches keep their scores.
func (s *Service) Deactivate(ctx context.Context, id kernel.ListingID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	logx.Infof("Deactivated listing %s", id.String())
	return nil
}

// Search finds active listings semantically close to a free-text query.
func (s *Service) Search(ctx context.Context, req listing.SearchListingsRequest) ([]listing.ListingResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, listing.ErrInvalidListing().WithDetail("reason", "query is required")
	}

	vector, err := s.embeddings.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, listing.ErrSearchFailed().WithDetail("error", err.Error())
	}

	results, err := s.repo.SemanticSearch(ctx, kernel.ListingEmbedding(vector), req.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]listing.ListingResponse, 0, len(results))
	for i := range results {
		responses = append(responses, results[i].ToResponse())
	}
	return responses, nil
}

// scheduleEmbedding generates the search vector off the request path. A
// failed generation only degrades semantic search, never ingestion.
func (s *Service) scheduleEmbedding(id kernel.ListingID, text string) {
	s.tasks.Submit("listing_embedding", func(ctx context.Context) error {
		vector, err := s.embeddings.GenerateEmbedding(ctx, text)
		if err != nil {
			return err
		}
		return s.repo.UpdateEmbedding(ctx, id, kernel.ListingEmbedding(vector))
	})
}

func validateIngest(req listing.IngestListingRequest) error {
	if strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.ExternalID) == "" {
		return listing.ErrInvalidListing().WithDetail("reason", "source and external_id are required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return listing.ErrInvalidListing().WithDetail("reason", "title is required")
	}
	if req.RemoteType != "" && !kernel.RemoteType(req.RemoteType).IsValid() {
		return listing.ErrInvalidListing().WithDetail("remote_type", req.RemoteType)
	}
	if req.EmploymentType != "" && !kernel.EmploymentType(req.EmploymentType).IsValid() {
		return listing.ErrInvalidListing().WithDetail("employment_type", req.EmploymentType)
	}
	return nil
}
