package model

import "time"

// Document is metadata for a file uploaded against a lead (`documents`).  URL
// is the public path the file is served from.
type Document struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	Type         string       `json:"type"`
	Size         int64        `json:"size"`
	LeadID       string       `json:"leadId"`
	UploadedByID string       `json:"uploadedById"`
	UploadedBy   *UserSummary `json:"uploadedBy"`
	CreatedAt    time.Time    `json:"createdAt"`
}
