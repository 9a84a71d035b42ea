package listing

import (
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
)

// Listing is a job posting pushed in by the upstream discovery collaborator.
// Identity is the (source, external_id) pair; rows are immutable once scored
// against, except for the active flag and periodic refreshes.
type Listing struct {
	ID         kernel.ListingID `db:"id" json:"id"`
	Source     string           `db:"source" json:"source"`
	ExternalID string           `db:"external_id" json:"external_id"`

	Title          string                `db:"title" json:"title"`
	Company        string                `db:"company" json:"company"`
	Location       string                `db:"location" json:"location"`
	RemoteType     kernel.RemoteType     `db:"remote_type" json:"remote_type"`
	EmploymentType kernel.EmploymentType `db:"employment_type" json:"employment_type"`
	Description    string                `db:"description" json:"description"`

	// SalaryText is kept unparsed; the scoring engine extracts numbers on
	// demand so unparseable postings stay usable.
	SalaryText string `db:"salary_text" json:"salary_text"`

	Embedding kernel.ListingEmbedding `db:"embedding" json:"-"`

	IsActive     bool      `db:"is_active" json:"is_active"`
	DiscoveredAt time.Time `db:"discovered_at" json:"discovered_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SearchText is the text the scoring engine matches skills against and the
// embedding generator encodes.
func (l *Listing) SearchText() string {
	return l.Title + "\n" + l.Description
}
