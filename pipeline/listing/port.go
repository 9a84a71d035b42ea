package listing

import (
	"context"

	"github.com/applyflow/applyflow/pkg/kernel"
)

type Repository interface {
	// CreateIfAbsent inserts a listing unless one with the same
	// (source, external_id) exists. Returns true when a row was inserted.
	CreateIfAbsent(ctx context.Context, listing *Listing) (bool, error)

	// GetByID retrieves a listing by ID.
	GetByID(ctx context.Context, id kernel.ListingID) (*Listing, error)

	// ListActive retrieves active listings with pagination, newest first.
	ListActive(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[Listing], error)

	// Deactivate soft-deletes a listing; already-scored matches survive.
	Deactivate(ctx context.Context, id kernel.ListingID) error

	// UpdateEmbedding stores the semantic search vector for a listing.
	UpdateEmbedding(ctx context.Context, id kernel.ListingID, embedding kernel.ListingEmbedding) error

	// SemanticSearch returns active listings nearest to the query vector.
	SemanticSearch(ctx context.Context, embedding kernel.ListingEmbedding, limit int) ([]Listing, error)
}

// EmbeddingGenerator produces the search vector for listing text.
type EmbeddingGenerator interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
