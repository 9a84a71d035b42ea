package listingsrv

import (
	"context"
	"testing"
	"time"

	"github.com/applyflow/applyflow/pipeline/listing"
	"github.com/applyflow/applyflow/pkg/asyncx"
	"github.com/applyflow/applyflow/pkg/errx"
	"github.com/applyflow/applyflow/pkg/kernel"
)

type fakeRepo struct {
	byPair map[string]*listing.Listing
	nextID int
}

func (r *fakeRepo) CreateIfAbsent(ctx context.Context, l *listing.Listing) (bool, error) {
	key := l.Source + "/" + l.ExternalID
	if existing, ok := r.byPair[key]; ok {
		l.ID = existing.ID
		return false, nil
	}
	r.nextID++
	l.ID = kernel.NewListingID(string(rune('a' + r.nextID)))
	clone := *l
	r.byPair[key] = &clone
	return true, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id kernel.ListingID) (*listing.Listing, error) {
	for _, l := range r.byPair {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, listing.ErrListingNotFound()
}

func (r *fakeRepo) ListActive(ctx context.Context, p kernel.PaginationOptions) (*kernel.Paginated[listing.Listing], error) {
	items := []listing.Listing{}
	for _, l := range r.byPair {
		items = append(items, *l)
	}
	page := kernel.Page{Number: 1, Size: kernel.DefaultPageSize, Total: len(items)}
	return kernel.NewPaginated(items, page), nil
}

func (r *fakeRepo) Deactivate(ctx context.Context, id kernel.ListingID) error { return nil }

func (r *fakeRepo) UpdateEmbedding(ctx context.Context, id kernel.ListingID, e kernel.ListingEmbedding) error {
	return nil
}

func (r *fakeRepo) SemanticSearch(ctx context.Context, e kernel.ListingEmbedding, limit int) ([]listing.Listing, error) {
	return nil, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{byPair: map[string]*listing.Listing{}}
	tasks := asyncx.NewPool(1, 16, time.Second)
	t.Cleanup(tasks.Shutdown)
	return NewService(repo, fakeEmbedder{}, tasks), repo
}

func TestIngestDeduplicatesBySourcePair(t *testing.T) {
	svc, repo := newTestService(t)
	req := listing.IngestListingRequest{
		Source:     "jobboard",
		ExternalID: "ext-1",
		Title:      "Backend Engineer",
		RemoteType: "remote",
	}

	first, err := svc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	if !first.Created {
		t.Fatal("expected first ingest to create")
	}

	second, err := svc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("repeated ingest failed: %v", err)
	}
	if second.Created {
		t.Fatal("repeated ingest must be a no-op")
	}
	if second.ID != first.ID {
		t.Errorf("repeated ingest returned a different id: %s vs %s", second.ID, first.ID)
	}
	if len(repo.byPair) != 1 {
		t.Fatalf("expected 1 stored listing, got %d", len(repo.byPair))
	}
}

func TestIngestValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		req  listing.IngestListingRequest
	}{
		{"missing identity", listing.IngestListingRequest{Title: "X"}},
		{"missing title", listing.IngestListingRequest{Source: "s", ExternalID: "e"}},
		{"bad remote type", listing.IngestListingRequest{Source: "s", ExternalID: "e", Title: "X", RemoteType: "orbital"}},
		{"bad employment type", listing.IngestListingRequest{Source: "s", ExternalID: "e", Title: "X", EmploymentType: "gig"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ingest(context.Background(), tt.req)
			if !errx.IsType(err, errx.TypeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
