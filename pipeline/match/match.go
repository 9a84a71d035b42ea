package match

import (
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
)

// ReviewState is the one-shot review lifecycle of a match
type ReviewState string

const (
	ReviewStatePending  ReviewState = "pending"
	ReviewStateApproved ReviewState = "approved"
	ReviewStateRejected ReviewState = "rejected"
)

func (s ReviewState) IsValid() bool {
	switch s {
	case ReviewStatePending, ReviewStateApproved, ReviewStateRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the state can no longer change.
func (s ReviewState) IsTerminal() bool {
	return s == ReviewStateApproved || s == ReviewStateRejected
}

// FactorKind tags a scoring factor. Reasons carry the kind as a typed
// constant rather than free-form text so consumers can switch on it.
type FactorKind string

const (
	FactorSkills     FactorKind = "skills"
	FactorTitle      FactorKind = "title"
	FactorLocation   FactorKind = "location"
	FactorSalary     FactorKind = "salary"
	FactorEmployment FactorKind = "employment"
)

// Reason explains one factor's contribution to a match score.
type Reason struct {
	Kind         FactorKind `json:"kind"`
	Description  string     `json:"description"`
	Contribution int        `json:"contribution"`
}

// Match is a scored association between a candidate and a listing.
// One row per (candidate_id, listing_id) pair, enforced by the repository.
type Match struct {
	ID          kernel.MatchID     `db:"id" json:"id"`
	CandidateID kernel.CandidateID `db:"candidate_id" json:"candidate_id"`
	ListingID   kernel.ListingID   `db:"listing_id" json:"listing_id"`

	Score   int      `db:"score" json:"score"`
	Reasons []Reason `db:"-" json:"reasons"`

	ReviewState ReviewState `db:"review_state" json:"review_state"`
	ReviewedAt  *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}
