package listing

import (
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
)

// IngestListingRequest is the payload the discovery collaborator pushes.
type IngestListingRequest struct {
	Source         string `json:"source"`
	ExternalID     string `json:"external_id"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	RemoteType     string `json:"remote_type"`
	EmploymentType string `json:"employment_type"`
	Description    string `json:"description"`
	SalaryText     string `json:"salary_text"`
}

// IngestListingResponse reports whether the posting was new.
type IngestListingResponse struct {
	ID      kernel.ListingID `json:"id"`
	Created bool             `json:"created"`
}

// ListingResponse is the API view of a listing.
type ListingResponse struct {
	ID             kernel.ListingID `json:"id"`
	Source         string           `json:"source"`
	ExternalID     string           `json:"external_id"`
	Title          string           `json:"title"`
	Company        string           `json:"company"`
	Location       string           `json:"location"`
	RemoteType     string           `json:"remote_type"`
	EmploymentType string           `json:"employment_type"`
	SalaryText     string           `json:"salary_text,omitempty"`
	IsActive       bool             `json:"is_active"`
	DiscoveredAt   time.Time        `json:"discovered_at"`
}

// SearchListingsRequest drives semantic search over active listings.
type SearchListingsRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// ToResponse converts a listing to its API representation.
func (l *Listing) ToResponse() ListingResponse {
	return ListingResponse{
		ID:             l.ID,
		Source:         l.Source,
		ExternalID:     l.ExternalID,
		Title:          l.Title,
		Company:        l.Company,
		Location:       l.Location,
		RemoteType:     string(l.RemoteType),
		EmploymentType: string(l.EmploymentType),
		SalaryText:     l.SalaryText,
		IsActive:       l.IsActive,
		DiscoveredAt:   l.DiscoveredAt,
	}
}
