package kernel

// RemoteType classifies how a listing expects work to happen.
type RemoteType string

const (
	RemoteTypeRemote RemoteType = "remote"
	RemoteTypeHybrid RemoteType = "hybrid"
	RemoteTypeOnsite RemoteType = "onsite"
)

// IsValid reports whether the value is a known remote type.
func (r RemoteType) IsValid() bool {
	switch r {
	case RemoteTypeRemote, RemoteTypeHybrid, RemoteTypeOnsite:
		return true
	}
	return false
}

// RemotePreference is a candidate's stance on remote work. Unlike RemoteType
// it allows "any".
type RemotePreference string

const (
	RemotePreferenceAny    RemotePreference = "any"
	RemotePreferenceRemote RemotePreference = "remote"
	RemotePreferenceHybrid RemotePreference = "hybrid"
	RemotePreferenceOnsite RemotePreference = "onsite"
)

// IsValid reports whether the value is a known remote preference.
func (r RemotePreference) IsValid() bool {
	switch r {
	case RemotePreferenceAny, RemotePreferenceRemote, RemotePreferenceHybrid, RemotePreferenceOnsite:
		return true
	}
	return false
}

// Matches reports whether a listing's remote type satisfies the preference
// exactly (the "any" preference matches everything).
func (r RemotePreference) Matches(t RemoteType) bool {
	if r == RemotePreferenceAny {
		return true
	}
	return string(r) == string(t)
}

// EmploymentType classifies the contract shape of a listing.
type EmploymentType string

const (
	EmploymentTypeFullTime   EmploymentType = "full_time"
	EmploymentTypePartTime   EmploymentType = "part_time"
	EmploymentTypeContract   EmploymentType = "contract"
	EmploymentTypeInternship EmploymentType = "internship"
	EmploymentTypeTemporary  EmploymentType = "temporary"
)

// IsValid reports whether the value is a known employment type.
func (e EmploymentType) IsValid() bool {
	switch e {
	case EmploymentTypeFullTime, EmploymentTypePartTime, EmploymentTypeContract,
		EmploymentTypeInternship, EmploymentTypeTemporary:
		return true
	}
	return false
}

// ListingEmbedding is a vector representation of listing text used for
// semantic search.
type ListingEmbedding []float32
