package apply

import (
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
)

// JobStatusResponse is the queryable view of an application job.
type JobStatusResponse struct {
	ID          kernel.JobID     `json:"id"`
	MatchID     kernel.MatchID   `json:"match_id"`
	ListingID   kernel.ListingID `json:"listing_id"`
	Status      JobStatus        `json:"status"`
	Attempts    int              `json:"attempts"`
	LastError   string           `json:"last_error,omitempty"`
	NextRetryAt *time.Time       `json:"next_retry_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// QueueDepthResponse reports job counts per status.
type QueueDepthResponse struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
}

// ToResponse converts a job to its API representation.
func (j *ApplyJob) ToResponse() JobStatusResponse {
	return JobStatusResponse{
		ID:          j.ID,
		MatchID:     j.MatchID,
		ListingID:   j.ListingID,
		Status:      j.Status,
		Attempts:    j.Attempts,
		LastError:   j.LastError,
		NextRetryAt: j.NextRetryAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
