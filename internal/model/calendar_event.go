package model

import "time"

// CalendarEvent is an appointment on the shared calendar (`calendar_events`).
// UserID is the owner, always the user who created it.
type CalendarEvent struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	AllDay      bool         `json:"allDay"`
	LeadID      *string      `json:"leadId"`
	Lead        *LeadRef     `json:"lead"`
	UserID      string       `json:"userId"`
	User        *UserSummary `json:"user"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// EventFilter selects events.  The range applies only when both bounds are
// set, and then requires start >= From and end <= To.
type EventFilter struct {
	From   *time.Time
	To     *time.Time
	UserID string
}

// EventPatch carries the updatable event fields.
type EventPatch struct {
	Title       *string
	Description *string
	Start       *time.Time
	End         *time.Time
	AllDay      *bool
	LeadID      *string
	ClearLead   bool
}
