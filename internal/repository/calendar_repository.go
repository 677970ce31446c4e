package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/septic-crm/internal/model"
)

// EventRepo persists calendar events.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventSelect = `SELECT e.id, e.title, e.description, e.start_at, e.end_at, e.all_day,
	e.lead_id, e.user_id, e.created_at, e.updated_at, l.name, u.name
	FROM calendar_events e
	LEFT JOIN leads l ON l.id = e.lead_id
	LEFT JOIN users u ON u.id = e.user_id`

func scanEvent(s rowScanner) (model.CalendarEvent, error) {
	var (
		e                  model.CalendarEvent
		desc, leadID       sql.NullString
		leadName, userName sql.NullString
	)
	err := s.Scan(&e.ID, &e.Title, &desc, &e.Start, &e.End, &e.AllDay,
		&leadID, &e.UserID, &e.CreatedAt, &e.UpdatedAt, &leadName, &userName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, ErrNotFound
		}
		return e, err
	}
	e.Description, e.LeadID = strPtr(desc), strPtr(leadID)
	if leadID.Valid {
		e.Lead = &model.LeadRef{ID: leadID.String, Name: leadName.String}
	}
	e.User = &model.UserSummary{ID: e.UserID, Name: userName.String}
	return e, nil
}

// Create inserts an event owned by e.UserID.
func (r *EventRepo) Create(ctx context.Context, e *model.CalendarEvent) (model.CalendarEvent, error) {
	e.ID = newID()
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO calendar_events (id, title, description, start_at, end_at, all_day, lead_id, user_id, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.Title, nullable(e.Description), e.Start.UTC(), e.End.UTC(), e.AllDay,
		nullable(e.LeadID), e.UserID, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return model.CalendarEvent{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, e.ID)
}

// GetByID fetches one event.
func (r *EventRepo) GetByID(ctx context.Context, id string) (model.CalendarEvent, error) {
	return scanEvent(r.db.QueryRowContext(ctx, eventSelect+" WHERE e.id = ?", id))
}

// List returns events ordered by start.  The range applies only when both
// bounds are set: events must start at or after From and end at or before To.
func (r *EventRepo) List(ctx context.Context, f model.EventFilter) ([]model.CalendarEvent, error) {
	var (
		where []string
		args  []any
	)
	if f.From != nil && f.To != nil {
		where = append(where, "e.start_at >= ?", "e.end_at <= ?")
		args = append(args, f.From.UTC(), f.To.UTC())
	}
	if f.UserID != "" {
		where = append(where, "e.user_id = ?")
		args = append(args, f.UserID)
	}
	q := eventSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY e.start_at ASC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update applies a partial update.
func (r *EventRepo) Update(ctx context.Context, id string, p model.EventPatch) (model.CalendarEvent, error) {
	var set setList
	if p.Title != nil {
		set.add("title", strings.TrimSpace(*p.Title))
	}
	if p.Description != nil {
		set.add("description", nullable(p.Description))
	}
	if p.Start != nil {
		set.add("start_at", p.Start.UTC())
	}
	if p.End != nil {
		set.add("end_at", p.End.UTC())
	}
	if p.AllDay != nil {
		set.add("all_day", *p.AllDay)
	}
	if p.ClearLead {
		set.add("lead_id", nil)
	} else if p.LeadID != nil {
		set.add("lead_id", nullable(p.LeadID))
	}
	set.add("updated_at", now())

	q := "UPDATE calendar_events SET " + strings.Join(set.cols, ", ") + " WHERE id = ?"
	if err := rowsAffected(r.db.ExecContext(ctx, q, append(set.args, id)...)); err != nil {
		return model.CalendarEvent{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes an event.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	return rowsAffected(r.db.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = ?", id))
}
