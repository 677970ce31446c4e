package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NoteHandler adds and removes notes on leads.
type NoteHandler struct {
	Notes NoteStore
	Log   *zap.Logger
}

func NewNoteHandler(notes NoteStore, log *zap.Logger) *NoteHandler {
	return &NoteHandler{Notes: notes, Log: log}
}

type createNoteReq struct {
	Content string `json:"content" validate:"required"`
	LeadID  string `json:"leadId" validate:"required"`
}

// Create records a note authored by the caller.
func (h *NoteHandler) Create(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req createNoteReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	n, err := h.Notes.Create(ctx, req.Content, strings.TrimSpace(req.LeadID), p.UserID)
	if err != nil {
		return storeError(err, "Note")
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *NoteHandler) Delete(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Notes.Delete(ctx, c.Param("id")); err != nil {
		return storeError(err, "Note")
	}
	return c.NoContent(http.StatusNoContent)
}
