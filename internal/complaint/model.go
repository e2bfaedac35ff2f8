package complaint

import "time"

// Status is the resolution state of a complaint.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusResolved Status = "Resolved"
)

// ReadStatus tracks whether staff have opened a complaint.
type ReadStatus string

const (
	ReadNotViewed ReadStatus = "Not viewed"
	ReadViewed    ReadStatus = "Viewed"
)

// Complaint is the common record shape shared by all six category tables.
// Category-specific fields are empty outside their category.
type Complaint struct {
	ID               string     `json:"id"`
	Category         Category   `json:"category"`
	ScholarNumber    string     `json:"scholarNumber"`
	StudentName      string     `json:"studentName"`
	UserEmail        string     `json:"useremail"`
	ComplainType     string     `json:"complainType,omitempty"`
	Description      string     `json:"complainDescription"`
	Attachments      []string   `json:"attachments"`
	HostelNumber     string     `json:"hostelNumber,omitempty"`
	Room             string     `json:"room,omitempty"`
	Department       string     `json:"department,omitempty"`
	Stream           string     `json:"stream,omitempty"`
	Year             string     `json:"year,omitempty"`
	Landmark         string     `json:"landmark,omitempty"`
	Status           Status     `json:"status"`
	ReadStatus       ReadStatus `json:"readStatus"`
	AdminRemarks     string     `json:"AdminRemarks"`
	AdminAttachments []string   `json:"AdminAttachments"`
	ResolvedAt       *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Submission is the payload a student sends when registering a complaint.
// Attachments are object-store keys already written by the upload
// collaborator; the engine stores them verbatim.
type Submission struct {
	ScholarNumber string   `json:"scholarNumber"`
	StudentName   string   `json:"studentName"`
	ComplainType  string   `json:"complainType"`
	Description   string   `json:"complainDescription"`
	HostelNumber  string   `json:"hostelNumber"`
	Room          string   `json:"room"`
	Department    string   `json:"department"`
	Stream        string   `json:"stream"`
	Year          string   `json:"year"`
	Landmark      string   `json:"landmark"`
	Attachments   []string `json:"-"`
}

// UpdateRequest is a staff-side partial update. Nil pointers leave fields
// untouched. ResolvedAt is never accepted from callers; the engine owns it.
type UpdateRequest struct {
	Status           *Status     `json:"status"`
	ReadStatus       *ReadStatus `json:"readStatus"`
	AdminRemarks     *string     `json:"AdminRemarks"`
	AdminAttachments []string    `json:"AdminAttachments"`
}

// Filter narrows an owner-scoped listing. Zero values mean no constraint;
// every populated field ANDs into the query.
type Filter struct {
	Start        *time.Time
	End          *time.Time
	IDs          []string
	ComplainType string
	Status       *Status
	ReadStatus   *ReadStatus
}

// Actor is the verified identity performing an operation. Ownership checks
// use Subject exclusively; payload-supplied identifiers are only ever
// equality-checked against it.
type Actor struct {
	Subject string
	Email   string
	Staff   bool
}
