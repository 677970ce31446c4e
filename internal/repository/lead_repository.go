// Lead persistence.  Every read joins the assigned user so responses carry
// the assignee summary the pipeline board displays on each card.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/iliyamo/septic-crm/internal/model"
)

// LeadRepo encapsulates all queries against the `leads` table.
type LeadRepo struct {
	db *sql.DB
}

func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{db: db} }

const leadSelect = `SELECT l.id, l.name, l.email, l.phone, l.stage, l.source, l.assigned_to_id,
	l.custom_fields, l.created_at, l.updated_at, u.id, u.name, u.email
	FROM leads l LEFT JOIN users u ON u.id = l.assigned_to_id`

func scanLead(s rowScanner) (model.Lead, error) {
	var (
		l                         model.Lead
		email, phone, src, assign sql.NullString
		custom                    []byte
		assigneeID, aName, aEmail sql.NullString
	)
	err := s.Scan(&l.ID, &l.Name, &email, &phone, &l.Stage, &src, &assign,
		&custom, &l.CreatedAt, &l.UpdatedAt, &assigneeID, &aName, &aEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return l, ErrNotFound
		}
		return l, err
	}
	l.Email, l.Phone, l.Source, l.AssignedToID = strPtr(email), strPtr(phone), strPtr(src), strPtr(assign)
	if assigneeID.Valid {
		l.AssignedTo = &model.UserSummary{ID: assigneeID.String, Name: aName.String, Email: aEmail.String}
	}
	l.CustomFields = map[string]any{}
	if len(custom) > 0 {
		if err := json.Unmarshal(custom, &l.CustomFields); err != nil {
			return l, err
		}
	}
	return l, nil
}

func encodeFields(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

// Create inserts the lead, filling ID and timestamps, and returns the stored
// row with its assignee.
func (r *LeadRepo) Create(ctx context.Context, l *model.Lead) (model.Lead, error) {
	custom, err := encodeFields(l.CustomFields)
	if err != nil {
		return model.Lead{}, err
	}
	l.ID = newID()
	l.CreatedAt = now()
	l.UpdatedAt = l.CreatedAt
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, email, phone, stage, source, assigned_to_id, custom_fields, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		l.ID, l.Name, nullable(l.Email), nullable(l.Phone), l.Stage, nullable(l.Source), nullable(l.AssignedToID),
		custom, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return model.Lead{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, l.ID)
}

// GetByID fetches one lead.  ErrNotFound when absent.
func (r *LeadRepo) GetByID(ctx context.Context, id string) (model.Lead, error) {
	return scanLead(r.db.QueryRowContext(ctx, leadSelect+" WHERE l.id = ?", id))
}

// List returns one page of leads, newest first, plus the total match count.
func (r *LeadRepo) List(ctx context.Context, f model.LeadFilter) (model.Page[model.Lead], error) {
	var (
		where []string
		args  []any
	)
	if f.Stage != "" {
		where = append(where, "l.stage = ?")
		args = append(args, f.Stage)
	}
	if f.AssignedToID != "" {
		where = append(where, "l.assigned_to_id = ?")
		args = append(args, f.AssignedToID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		where = append(where, "(LOWER(l.name) LIKE ? OR LOWER(l.email) LIKE ? OR LOWER(l.phone) LIKE ?)")
		args = append(args, like, like, like)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	page := model.Page[model.Lead]{Data: []model.Lead{}, Page: f.Page, PageSize: f.PageSize}
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads l"+clause, args...).Scan(&page.Total); err != nil {
		return page, err
	}
	if f.PageSize > 0 {
		page.TotalPages = (page.Total + f.PageSize - 1) / f.PageSize
	}

	q := leadSelect + clause + " ORDER BY l.created_at DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, append(args, f.PageSize, (f.Page-1)*f.PageSize)...)
	if err != nil {
		return page, err
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return page, err
		}
		page.Data = append(page.Data, l)
	}
	return page, rows.Err()
}

// Update applies a partial update.  Any field, stage included, may change;
// no transition rule is checked here.
func (r *LeadRepo) Update(ctx context.Context, id string, p model.LeadPatch) (model.Lead, error) {
	var set setList
	if p.Name != nil {
		set.add("name", strings.TrimSpace(*p.Name))
	}
	if p.Email != nil {
		set.add("email", nullable(p.Email))
	}
	if p.Phone != nil {
		set.add("phone", nullable(p.Phone))
	}
	if p.Stage != nil {
		set.add("stage", *p.Stage)
	}
	if p.Source != nil {
		set.add("source", nullable(p.Source))
	}
	if p.ClearAssignee {
		set.add("assigned_to_id", nil)
	} else if p.AssignedToID != nil {
		set.add("assigned_to_id", nullable(p.AssignedToID))
	}
	if p.CustomFields != nil {
		custom, err := encodeFields(p.CustomFields)
		if err != nil {
			return model.Lead{}, err
		}
		set.add("custom_fields", custom)
	}
	set.add("updated_at", now())

	q := "UPDATE leads SET " + strings.Join(set.cols, ", ") + " WHERE id = ?"
	if err := rowsAffected(r.db.ExecContext(ctx, q, append(set.args, id)...)); err != nil {
		return model.Lead{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdateStage moves a lead to stage.  Concurrent moves are last-write-wins.
func (r *LeadRepo) UpdateStage(ctx context.Context, id, stage string) (model.Lead, error) {
	stage = strings.TrimSpace(stage)
	return r.Update(ctx, id, model.LeadPatch{Stage: &stage})
}

// Delete removes a lead; notes, activities and documents cascade.
func (r *LeadRepo) Delete(ctx context.Context, id string) error {
	return rowsAffected(r.db.ExecContext(ctx, "DELETE FROM leads WHERE id = ?", id))
}

// escapeLike escapes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
