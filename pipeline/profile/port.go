package profile

import (
	"context"

	"github.com/applyflow/applyflow/pkg/kernel"
)

type Repository interface {
	// Upsert creates or replaces the single profile for a candidate.
	Upsert(ctx context.Context, profile *CandidateProfile) error

	// GetByCandidateID retrieves the profile for a candidate.
	GetByCandidateID(ctx context.Context, candidateID kernel.CandidateID) (*CandidateProfile, error)

	// ListCandidateIDs returns all candidate ids that have a profile, for
	// scheduled scoring sweeps.
	ListCandidateIDs(ctx context.Context) ([]kernel.CandidateID, error)
}

// Extractor is the external collaborator turning document bytes into
// structured attributes. Implementations live outside the pipeline core.
type Extractor interface {
	ExtractProfile(ctx context.Context, pages [][]byte) (*ExtractedData, error)
}

// ExtractedData is the collaborator's result shape.
type ExtractedData struct {
	Skills         []string
	DesiredTitles  []string
	Certifications []string
}

// ScoringTrigger kicks off a scoring run for one candidate after a profile
// change. Implemented by the match service; injected to avoid an import
// cycle.
type ScoringTrigger interface {
	ScoreListingsForCandidate(ctx context.Context, candidateID kernel.CandidateID) error
}
