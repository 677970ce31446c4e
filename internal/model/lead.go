package model

import "time"

// Lead is a prospective customer tracked through the pipeline (`leads`).
// Stage holds a pipeline stage key; CustomFields is stored as a JSON column.
type Lead struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        *string        `json:"email"`
	Phone        *string        `json:"phone"`
	Stage        string         `json:"stage"`
	Source       *string        `json:"source"`
	AssignedToID *string        `json:"assignedToId"`
	AssignedTo   *UserSummary   `json:"assignedTo"`
	CustomFields map[string]any `json:"customFields"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// LeadDetail is a lead together with its child records, newest first.
type LeadDetail struct {
	Lead
	Notes      []Note     `json:"notes"`
	Activities []Activity `json:"activities"`
	Documents  []Document `json:"documents"`
}

// LeadFilter narrows a lead listing.  Search matches name, email or phone
// case-insensitively.  Page is 1-based.
type LeadFilter struct {
	Stage        string
	Search       string
	AssignedToID string
	Page         int
	PageSize     int
}

// LeadPatch carries the fields of a full update.  Nil means "leave as is".
// ClearAssignee distinguishes an explicit null assignee from an absent one.
type LeadPatch struct {
	Name          *string
	Email         *string
	Phone         *string
	Stage         *string
	Source        *string
	AssignedToID  *string
	ClearAssignee bool
	CustomFields  map[string]any
}

// Page is one page of a listing.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}
