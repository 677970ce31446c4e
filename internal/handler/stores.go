package handler

import (
	"context"
	"io"
	"time"

	"github.com/iliyamo/septic-crm/internal/model"
)

// The handlers depend on these narrow interfaces rather than on the MySQL
// repositories so they can be exercised with in-memory fakes.  Each
// *repository.XRepo satisfies the matching interface.

type UserStore interface {
	Create(ctx context.Context, name, email, password, role string, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	Count(ctx context.Context) (int, error)
	FirstAdmin(ctx context.Context) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id string) error
}

type LeadStore interface {
	Create(ctx context.Context, l *model.Lead) (model.Lead, error)
	GetByID(ctx context.Context, id string) (model.Lead, error)
	List(ctx context.Context, f model.LeadFilter) (model.Page[model.Lead], error)
	Update(ctx context.Context, id string, p model.LeadPatch) (model.Lead, error)
	UpdateStage(ctx context.Context, id, stage string) (model.Lead, error)
	Delete(ctx context.Context, id string) error
}

type NoteStore interface {
	Create(ctx context.Context, content, leadID, authorID string) (model.Note, error)
	ListByLead(ctx context.Context, leadID string) ([]model.Note, error)
	Delete(ctx context.Context, id string) error
}

type ActivityStore interface {
	Create(ctx context.Context, a *model.Activity) (model.Activity, error)
	GetByID(ctx context.Context, id string) (model.Activity, error)
	List(ctx context.Context, f model.ActivityFilter) ([]model.Activity, error)
	Update(ctx context.Context, id string, p model.ActivityPatch) (model.Activity, error)
	Delete(ctx context.Context, id string) error
}

type EventStore interface {
	Create(ctx context.Context, e *model.CalendarEvent) (model.CalendarEvent, error)
	GetByID(ctx context.Context, id string) (model.CalendarEvent, error)
	List(ctx context.Context, f model.EventFilter) ([]model.CalendarEvent, error)
	Update(ctx context.Context, id string, p model.EventPatch) (model.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}

type DocumentStore interface {
	Create(ctx context.Context, d *model.Document) (model.Document, error)
	GetByID(ctx context.Context, id string) (model.Document, error)
	List(ctx context.Context, leadID string) ([]model.Document, error)
	Delete(ctx context.Context, id string) error
}

// StatsStore backs the dashboard.
type StatsStore interface {
	CountLeads(ctx context.Context, stage string) (int, error)
	CountLeadsCreated(ctx context.Context, from, to time.Time) (int, error)
	LeadsByStage(ctx context.Context) (map[string]int, error)
	RecentLeads(ctx context.Context, limit int) ([]model.Lead, error)
	UpcomingActivities(ctx context.Context, from time.Time, limit int) ([]model.Activity, error)
}

// FileStore holds uploaded document bodies.  *storage.Local satisfies it.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	Delete(ctx context.Context, name string) error
}

// Notifier announces a newly captured lead to the office.  Implementations
// may send mail directly or hand the work to a queue.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead model.Lead) error
}
