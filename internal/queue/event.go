// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/septic-crm/internal/model"
)

// LeadCreatedQueue is the durable queue new-lead events are published to.
const LeadCreatedQueue = "lead.created"

// LeadCreatedEvent is published when a website visitor submits the contact
// form.  It carries everything the notification needs so the consumer
// never has to query the database.
type LeadCreatedEvent struct {
	LeadID    string  `json:"lead_id"`
	Name      string  `json:"name"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Stage     string  `json:"stage"`
	Source    *string `json:"source,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// NewLeadCreatedEvent captures lead as an event.
func NewLeadCreatedEvent(l model.Lead) LeadCreatedEvent {
	return LeadCreatedEvent{
		LeadID:    l.ID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Stage:     l.Stage,
		Source:    l.Source,
		CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Lead rebuilds the parts of the lead the notification uses.
func (e LeadCreatedEvent) Lead() model.Lead {
	l := model.Lead{ID: e.LeadID, Name: e.Name, Email: e.Email, Phone: e.Phone, Stage: e.Stage, Source: e.Source}
	if t, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
		l.CreatedAt = t
	}
	return l
}
