package model

import "time"

// Activity types.
const (
	ActivityCall    = "CALL"
	ActivityEmail   = "EMAIL"
	ActivityMeeting = "MEETING"
	ActivityTask    = "TASK"
	ActivityNote    = "NOTE"
)

// LeadRef is the minimal view of a lead embedded in child listings.
type LeadRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Activity is a call, email, meeting, task or note logged against the CRM
// (`activities`).  Completion is tracked independently of lead stage.
type Activity struct {
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	Title        string       `json:"title"`
	Description  *string      `json:"description"`
	DueDate      *time.Time   `json:"dueDate"`
	Completed    bool         `json:"completed"`
	LeadID       *string      `json:"leadId"`
	Lead         *LeadRef     `json:"lead"`
	AssignedToID *string      `json:"assignedToId"`
	AssignedTo   *UserSummary `json:"assignedTo"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// ActivityFilter narrows an activity listing; nil Completed means either.
type ActivityFilter struct {
	LeadID       string
	AssignedToID string
	Type         string
	Completed    *bool
}

// ActivityPatch carries the updatable activity fields.
type ActivityPatch struct {
	Title         *string
	Description   *string
	DueDate       *time.Time
	Completed     *bool
	AssignedToID  *string
	ClearAssignee bool
}

// ActivityTypes lists every activity type in display order.
var ActivityTypes = []string{ActivityCall, ActivityEmail, ActivityMeeting, ActivityTask, ActivityNote}

// ValidActivityType reports whether t is a known activity type.
func ValidActivityType(t string) bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityMeeting, ActivityTask, ActivityNote:
		return true
	}
	return false
}
