package match

import (
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
)

// ReviewMatchRequest is the candidate's approve/reject decision. Approved is
// a pointer so a missing flag is rejected instead of defaulting to false.
type ReviewMatchRequest struct {
	Approved *bool `json:"approved"`
}

// MatchResponse is the API view of a match.
type MatchResponse struct {
	ID          kernel.MatchID   `json:"id"`
	ListingID   kernel.ListingID `json:"listing_id"`
	Score       int              `json:"score"`
	Reasons     []Reason         `json:"reasons"`
	ReviewState ReviewState      `json:"review_state"`
	ReviewedAt  *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ReviewMatchResponse reports the review outcome; JobID is set only when the
// approval enqueued an application job.
type ReviewMatchResponse struct {
	Match MatchResponse `json:"match"`
	JobID kernel.JobID  `json:"job_id,omitempty"`
}

// ToResponse converts a match to its API representation.
func (m *Match) ToResponse() MatchResponse {
	reasons := m.Reasons
	if reasons == nil {
		reasons = []Reason{}
	}
	return MatchResponse{
		ID:          m.ID,
		ListingID:   m.ListingID,
		Score:       m.Score,
		Reasons:     reasons,
		ReviewState: m.ReviewState,
		ReviewedAt:  m.ReviewedAt,
		CreatedAt:   m.CreatedAt,
	}
}
