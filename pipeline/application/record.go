package application

import (
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/google/uuid"
)

// Record is the durable receipt of a completed application. Records are
// insert-only: one per succeeded application job, never updated or deleted.
type Record struct {
	ID          kernel.ApplicationID `db:"id" json:"id"`
	CandidateID kernel.CandidateID   `db:"candidate_id" json:"candidate_id"`
	ListingID   kernel.ListingID     `db:"listing_id" json:"listing_id"`
	JobID       kernel.JobID         `db:"job_id" json:"job_id"`

	// ApplicationRef is the collaborator's reference for the submitted
	// application, when it returns one.
	ApplicationRef string `db:"application_ref" json:"application_ref,omitempty"`

	AppliedAt time.Time `db:"applied_at" json:"applied_at"`
}

// NewRecord builds the receipt for a succeeded application job.
func NewRecord(candidateID kernel.CandidateID, listingID kernel.ListingID, jobID kernel.JobID, applicationRef string) *Record {
	return &Record{
		ID:             kernel.NewApplicationID(uuid.New().String()),
		CandidateID:    candidateID,
		ListingID:      listingID,
		JobID:          jobID,
		ApplicationRef: applicationRef,
		AppliedAt:      time.Now(),
	}
}
