package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/septic-crm/internal/model"
)

// DocumentRepo stores metadata of uploaded files.  The bytes live on disk;
// see handler.DocumentHandler.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

const documentSelect = `SELECT d.id, d.name, d.url, d.type, d.size, d.lead_id, d.uploaded_by_id, d.created_at, u.name
	FROM documents d LEFT JOIN users u ON u.id = d.uploaded_by_id`

func scanDocument(s rowScanner) (model.Document, error) {
	var (
		d    model.Document
		name sql.NullString
	)
	err := s.Scan(&d.ID, &d.Name, &d.URL, &d.Type, &d.Size, &d.LeadID, &d.UploadedByID, &d.CreatedAt, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, ErrNotFound
		}
		return d, err
	}
	d.UploadedBy = &model.UserSummary{ID: d.UploadedByID, Name: name.String}
	return d, nil
}

// Create inserts document metadata.  d.ID may be preset by the caller so the
// stored file name and row id match; it is generated otherwise.
func (r *DocumentRepo) Create(ctx context.Context, d *model.Document) (model.Document, error) {
	if d.ID == "" {
		d.ID = newID()
	}
	d.CreatedAt = now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, url, type, size, lead_id, uploaded_by_id, created_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		d.ID, d.Name, d.URL, d.Type, d.Size, d.LeadID, d.UploadedByID, d.CreatedAt)
	if err != nil {
		return model.Document{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, d.ID)
}

// GetByID fetches one document.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (model.Document, error) {
	return scanDocument(r.db.QueryRowContext(ctx, documentSelect+" WHERE d.id = ?", id))
}

// List returns documents, optionally only those of one lead, newest first.
func (r *DocumentRepo) List(ctx context.Context, leadID string) ([]model.Document, error) {
	q := documentSelect
	var args []any
	if leadID != "" {
		q += " WHERE d.lead_id = ?"
		args = append(args, leadID)
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY d.created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Delete removes the metadata row.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	return rowsAffected(r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id))
}
