package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
)

// MaxUploadSize is the largest document accepted.
const MaxUploadSize = 10 << 20

// UploadsPath is the URL prefix uploaded files are served under.
const UploadsPath = "/uploads"

// DocumentHandler stores files attached to leads.  Bodies go to Files,
// metadata to Documents.
type DocumentHandler struct {
	Documents DocumentStore
	Files     FileStore
	MaxSize   int64
	Log       *zap.Logger
}

func NewDocumentHandler(docs DocumentStore, files FileStore, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{Documents: docs, Files: files, MaxSize: MaxUploadSize, Log: log}
}

// List returns documents newest first, optionally only those of ?leadId.
func (h *DocumentHandler) List(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	docs, err := h.Documents.List(ctx, c.QueryParam("leadId"))
	if err != nil {
		return storeError(err, "Document")
	}
	return c.JSON(http.StatusOK, docs)
}

// Upload accepts a multipart form with `file` and `leadId`.  The file is
// saved under a fresh unique name; its original name is kept in the record.
func (h *DocumentHandler) Upload(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest("File is required")
	}
	leadID := strings.TrimSpace(c.FormValue("leadId"))
	if leadID == "" {
		return badRequest("Lead ID is required")
	}
	if h.MaxSize > 0 && fh.Size > h.MaxSize {
		return newAPIError(http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d MB limit", h.MaxSize>>20))
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	contentType := detectContentType(fh, src)

	ctx, cancel := storeCtx(c)
	defer cancel()

	id := uuid.NewString()
	name := id + strings.ToLower(filepath.Ext(fh.Filename))
	size, err := h.Files.Save(ctx, name, src)
	if err != nil {
		return fmt.Errorf("save upload: %w", err)
	}

	doc, err := h.Documents.Create(ctx, &model.Document{
		ID:           id,
		Name:         filepath.Base(fh.Filename),
		URL:          path.Join(UploadsPath, name),
		Type:         contentType,
		Size:         size,
		LeadID:       leadID,
		UploadedByID: p.UserID,
	})
	if err != nil {
		if delErr := h.Files.Delete(ctx, name); delErr != nil {
			h.Log.Warn("clean up upload after create error", zap.String("name", name), zap.Error(delErr))
		}
		return storeError(err, "Document")
	}
	return c.JSON(http.StatusCreated, doc)
}

// Delete removes the record, then the file.  A file that cannot be removed
// is logged; the record is already gone.
func (h *DocumentHandler) Delete(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	id := c.Param("id")
	doc, err := h.Documents.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "Document")
	}
	if err := h.Documents.Delete(ctx, id); err != nil {
		return storeError(err, "Document")
	}
	if err := h.Files.Delete(ctx, path.Base(doc.URL)); err != nil {
		h.Log.Warn("remove document file", zap.String("document_id", id), zap.Error(err))
	}
	return c.NoContent(http.StatusNoContent)
}

// detectContentType prefers the client's declared type and falls back to
// sniffing the content.  src is rewound afterwards.
func detectContentType(fh *multipart.FileHeader, src multipart.File) string {
	if ct := fh.Header.Get(echo.HeaderContentType); ct != "" && ct != echo.MIMEOctetStream {
		return ct
	}
	mt, err := mimetype.DetectReader(src)
	if _, serr := src.Seek(0, io.SeekStart); serr != nil || err != nil {
		return echo.MIMEOctetStream
	}
	return mt.String()
}
