package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/septic-crm/internal/model"
)

// ActivityRepo stores calls, emails, meetings, tasks and notes.
type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

const activitySelect = `SELECT a.id, a.type, a.title, a.description, a.due_date, a.completed,
	a.lead_id, a.assigned_to_id, a.created_at, a.updated_at, l.name, u.name, u.email
	FROM activities a
	LEFT JOIN leads l ON l.id = a.lead_id
	LEFT JOIN users u ON u.id = a.assigned_to_id`

func scanActivity(s rowScanner) (model.Activity, error) {
	var (
		a                      model.Activity
		desc, leadID, assignee sql.NullString
		due                    sql.NullTime
		leadName, assigneeName sql.NullString
		assigneeEmail          sql.NullString
	)
	err := s.Scan(&a.ID, &a.Type, &a.Title, &desc, &due, &a.Completed,
		&leadID, &assignee, &a.CreatedAt, &a.UpdatedAt, &leadName, &assigneeName, &assigneeEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, ErrNotFound
		}
		return a, err
	}
	a.Description, a.DueDate = strPtr(desc), timePtr(due)
	a.LeadID, a.AssignedToID = strPtr(leadID), strPtr(assignee)
	if leadID.Valid {
		a.Lead = &model.LeadRef{ID: leadID.String, Name: leadName.String}
	}
	if assignee.Valid {
		a.AssignedTo = &model.UserSummary{ID: assignee.String, Name: assigneeName.String, Email: assigneeEmail.String}
	}
	return a, nil
}

// Create inserts an activity and returns it with lead and assignee attached.
func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) (model.Activity, error) {
	a.ID = newID()
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (id, type, title, description, due_date, completed, lead_id, assigned_to_id, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.Type, a.Title, nullable(a.Description), nullableTime(a.DueDate), a.Completed,
		nullable(a.LeadID), nullable(a.AssignedToID), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return model.Activity{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, a.ID)
}

// GetByID fetches one activity.
func (r *ActivityRepo) GetByID(ctx context.Context, id string) (model.Activity, error) {
	return scanActivity(r.db.QueryRowContext(ctx, activitySelect+" WHERE a.id = ?", id))
}

// List returns activities matching f, newest first.
func (r *ActivityRepo) List(ctx context.Context, f model.ActivityFilter) ([]model.Activity, error) {
	var (
		where []string
		args  []any
	)
	if f.LeadID != "" {
		where = append(where, "a.lead_id = ?")
		args = append(args, f.LeadID)
	}
	if f.AssignedToID != "" {
		where = append(where, "a.assigned_to_id = ?")
		args = append(args, f.AssignedToID)
	}
	if f.Type != "" {
		where = append(where, "a.type = ?")
		args = append(args, f.Type)
	}
	if f.Completed != nil {
		where = append(where, "a.completed = ?")
		args = append(args, *f.Completed)
	}
	q := activitySelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return r.query(ctx, q+" ORDER BY a.created_at DESC", args...)
}

// Upcoming returns up to limit incomplete activities due after the given
// time, soonest first.
func (r *ActivityRepo) Upcoming(ctx context.Context, after time.Time, limit int) ([]model.Activity, error) {
	return r.query(ctx,
		activitySelect+" WHERE a.completed = FALSE AND a.due_date >= ? ORDER BY a.due_date ASC LIMIT ?",
		after.UTC(), limit)
}

// DueBetween returns incomplete, assigned activities due in [from, to),
// soonest first.  The reminder job polls it.
func (r *ActivityRepo) DueBetween(ctx context.Context, from, to time.Time) ([]model.Activity, error) {
	return r.query(ctx,
		activitySelect+" WHERE a.completed = FALSE AND a.assigned_to_id IS NOT NULL"+
			" AND a.due_date >= ? AND a.due_date < ? ORDER BY a.due_date ASC",
		from.UTC(), to.UTC())
}

func (r *ActivityRepo) query(ctx context.Context, q string, args ...any) ([]model.Activity, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update applies a partial update; completion is toggled here independently
// of the lead's stage.
func (r *ActivityRepo) Update(ctx context.Context, id string, p model.ActivityPatch) (model.Activity, error) {
	var set setList
	if p.Title != nil {
		set.add("title", strings.TrimSpace(*p.Title))
	}
	if p.Description != nil {
		set.add("description", nullable(p.Description))
	}
	if p.DueDate != nil {
		set.add("due_date", nullableTime(p.DueDate))
	}
	if p.Completed != nil {
		set.add("completed", *p.Completed)
	}
	if p.ClearAssignee {
		set.add("assigned_to_id", nil)
	} else if p.AssignedToID != nil {
		set.add("assigned_to_id", nullable(p.AssignedToID))
	}
	set.add("updated_at", now())

	q := "UPDATE activities SET " + strings.Join(set.cols, ", ") + " WHERE id = ?"
	if err := rowsAffected(r.db.ExecContext(ctx, q, append(set.args, id)...)); err != nil {
		return model.Activity{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes an activity.
func (r *ActivityRepo) Delete(ctx context.Context, id string) error {
	return rowsAffected(r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id))
}
