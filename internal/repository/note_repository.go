package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/septic-crm/internal/model"
)

// NoteRepo stores free-text notes on leads.
type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{db: db} }

// Create inserts a note and returns it with the author summary.  A missing
// lead or author yields ErrInvalidReference.
func (r *NoteRepo) Create(ctx context.Context, content, leadID, authorID string) (model.Note, error) {
	n := model.Note{
		ID:        newID(),
		Content:   strings.TrimSpace(content),
		LeadID:    leadID,
		AuthorID:  authorID,
		CreatedAt: now(),
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (id, content, lead_id, author_id, created_at) VALUES (?,?,?,?,?)",
		n.ID, n.Content, n.LeadID, n.AuthorID, n.CreatedAt)
	if err != nil {
		return model.Note{}, mapWriteErr(err)
	}
	var name sql.NullString
	_ = r.db.QueryRowContext(ctx, "SELECT name FROM users WHERE id = ?", authorID).Scan(&name)
	n.Author = &model.UserSummary{ID: authorID, Name: name.String}
	return n, nil
}

// ListByLead returns a lead's notes, newest first.
func (r *NoteRepo) ListByLead(ctx context.Context, leadID string) ([]model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.content, n.lead_id, n.author_id, n.created_at, u.name
		 FROM notes n LEFT JOIN users u ON u.id = n.author_id
		 WHERE n.lead_id = ? ORDER BY n.created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Note{}
	for rows.Next() {
		var (
			n    model.Note
			name sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.Content, &n.LeadID, &n.AuthorID, &n.CreatedAt, &name); err != nil {
			return nil, err
		}
		n.Author = &model.UserSummary{ID: n.AuthorID, Name: name.String}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Delete removes a note.
func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	return rowsAffected(r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id))
}
