package kernel

type CandidateID string

func NewCandidateID(id string) CandidateID { return CandidateID(id) }
func (c CandidateID) String() string       { return string(c) }
func (c CandidateID) IsEmpty() bool        { return string(c) == "" }

type ListingID string

func NewListingID(id string) ListingID { return ListingID(id) }
func (l ListingID) String() string     { return string(l) }
func (l ListingID) IsEmpty() bool      { return string(l) == "" }

type MatchID string

func NewMatchID(id string) MatchID { return MatchID(id) }
func (m MatchID) String() string   { return string(m) }
func (m MatchID) IsEmpty() bool    { return string(m) == "" }

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (j JobID) String() string { return string(j) }
func (j JobID) IsEmpty() bool  { return string(j) == "" }

type ApplicationID string

func NewApplicationID(id string) ApplicationID { return ApplicationID(id) }
func (a ApplicationID) String() string         { return string(a) }
func (a ApplicationID) IsEmpty() bool          { return string(a) == "" }
