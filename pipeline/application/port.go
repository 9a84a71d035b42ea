package application

import (
	"context"

	"github.com/applyflow/applyflow/pkg/kernel"
)

// Repository reads application records. Writes happen inside the application
// queue's success transaction, never through this port.
type Repository interface {
	// GetByID retrieves a candidate's application record.
	GetByID(ctx context.Context, candidateID kernel.CandidateID, id kernel.ApplicationID) (*Record, error)

	// ListByCandidate returns a candidate's records, newest first.
	ListByCandidate(ctx context.Context, candidateID kernel.CandidateID, pagination kernel.PaginationOptions) (*kernel.Paginated[Record], error)
}
