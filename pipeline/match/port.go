package match

import (
	"context"

	"github.com/applyflow/applyflow/pkg/kernel"
)

type Repository interface {
	// CreateIfAbsent inserts a match unless the (candidate_id, listing_id)
	// pair already has one. A duplicate call is a no-op returning false,
	// never an error; overlapping scoring passes rely on this.
	CreateIfAbsent(ctx context.Context, m *Match) (bool, error)

	// GetByID retrieves a candidate's match. Returns ErrMatchNotFound when
	// the match does not exist or belongs to another candidate.
	GetByID(ctx context.Context, candidateID kernel.CandidateID, matchID kernel.MatchID) (*Match, error)

	// ListPending returns unreviewed matches ordered by score descending,
	// then recency descending.
	ListPending(ctx context.Context, candidateID kernel.CandidateID, pagination kernel.PaginationOptions) (*kernel.Paginated[Match], error)

	// ListReviewed returns approved and rejected matches, same ordering.
	ListReviewed(ctx context.Context, candidateID kernel.CandidateID, pagination kernel.PaginationOptions) (*kernel.Paginated[Match], error)

	// Review transitions a pending match to approved or rejected with a
	// compare-and-set on the current state. Returns ErrMatchNotFound for
	// unknown or foreign matches and ErrAlreadyReviewed when the match
	// left pending first, also under concurrent duplicate requests.
	Review(ctx context.Context, candidateID kernel.CandidateID, matchID kernel.MatchID, state ReviewState) (*Match, error)
}

// ApplyEnqueuer hands an approved match to the application queue. The
// implementation must enqueue at most one job per match.
type ApplyEnqueuer interface {
	EnqueueForMatch(ctx context.Context, candidateID kernel.CandidateID, listingID kernel.ListingID, matchID kernel.MatchID) (kernel.JobID, error)
}
