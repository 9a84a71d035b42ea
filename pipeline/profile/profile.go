package profile

import (
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
)

// CandidateProfile holds the attributes scoring reads. There is at most one
// profile per candidate; reprocessing a résumé replaces it in place.
type CandidateProfile struct {
	CandidateID kernel.CandidateID `db:"candidate_id" json:"candidate_id"`

	Skills           []string                `db:"skills" json:"skills"`
	DesiredTitles    []string                `db:"desired_titles" json:"desired_titles"`
	RemotePreference kernel.RemotePreference `db:"remote_preference" json:"remote_preference"`
	MinSalary        *int64                  `db:"min_salary" json:"min_salary,omitempty"`
	EmploymentTypes  []kernel.EmploymentType `db:"employment_types" json:"employment_types"`

	// Degraded marks profiles created after a failed extraction: the
	// candidate exists, scoring works, but attributes are empty.
	Degraded bool `db:"degraded" json:"degraded"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewDegradedProfile builds the minimal profile persisted when résumé
// extraction fails. The pipeline never aborts on extraction failure.
func NewDegradedProfile(candidateID kernel.CandidateID) *CandidateProfile {
	now := time.Now()
	return &CandidateProfile{
		CandidateID:      candidateID,
		Skills:           []string{},
		DesiredTitles:    []string{},
		RemotePreference: kernel.RemotePreferenceAny,
		EmploymentTypes:  []kernel.EmploymentType{},
		Degraded:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// HasSkills reports whether the profile carries any skill data.
func (p *CandidateProfile) HasSkills() bool {
	return len(p.Skills) > 0
}
