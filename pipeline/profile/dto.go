package profile

import (
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
)

// ProcessDocumentRequest - DTO for triggering résumé processing
type ProcessDocumentRequest struct {
	CandidateID kernel.CandidateID `json:"candidate_id"`
	FilePath    string             `json:"file_path" validate:"required"`
	FileType    string             `json:"file_type" validate:"required"`
}

// UpdatePreferencesRequest - DTO for candidate-set preferences that
// extraction cannot derive from the document
type UpdatePreferencesRequest struct {
	DesiredTitles    *[]string                `json:"desired_titles,omitempty"`
	RemotePreference *kernel.RemotePreference `json:"remote_preference,omitempty"`
	MinSalary        *int64                   `json:"min_salary,omitempty"`
	EmploymentTypes  *[]kernel.EmploymentType `json:"employment_types,omitempty"`
}

// ProfileResponse - DTO for returning profile data
type ProfileResponse struct {
	CandidateID      kernel.CandidateID      `json:"candidate_id"`
	Skills           []string                `json:"skills"`
	DesiredTitles    []string                `json:"desired_titles"`
	RemotePreference kernel.RemotePreference `json:"remote_preference"`
	MinSalary        *int64                  `json:"min_salary,omitempty"`
	EmploymentTypes  []kernel.EmploymentType `json:"employment_types"`
	Degraded         bool                    `json:"degraded"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// ToResponse converts the entity into its API representation.
func ToResponse(p *CandidateProfile) *ProfileResponse {
	return &ProfileResponse{
		CandidateID:      p.CandidateID,
		Skills:           p.Skills,
		DesiredTitles:    p.DesiredTitles,
		RemotePreference: p.RemotePreference,
		MinSalary:        p.MinSalary,
		EmploymentTypes:  p.EmploymentTypes,
		Degraded:         p.Degraded,
		UpdatedAt:        p.UpdatedAt,
	}
}
