package model

import "time"

// Note is a free-text entry on a lead (`notes`).
type Note struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	LeadID    string       `json:"leadId"`
	AuthorID  string       `json:"authorId"`
	Author    *UserSummary `json:"author"`
	CreatedAt time.Time    `json:"createdAt"`
}
