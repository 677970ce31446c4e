package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
	"github.com/iliyamo/septic-crm/internal/pipeline"
	"github.com/iliyamo/septic-crm/internal/repository"
)

// notifyTimeout bounds the background new-lead notification.
const notifyTimeout = 30 * time.Second

// ContactHandler receives the public website's contact form.  Each
// submission becomes a lead in the entry stage plus a note carrying the
// visitor's message, and the office is notified in the background.
type ContactHandler struct {
	Leads    LeadStore
	Users    UserStore
	Notes    NoteStore
	Notifier Notifier
	Pipeline *pipeline.Pipeline
	Log      *zap.Logger

	// sent, when set, is called after the notification attempt finishes.
	sent func(error)
}

func NewContactHandler(leads LeadStore, users UserStore, notes NoteStore, n Notifier, p *pipeline.Pipeline, log *zap.Logger) *ContactHandler {
	return &ContactHandler{Leads: leads, Users: users, Notes: notes, Notifier: n, Pipeline: p, Log: log}
}

type contactReq struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

// ContactNotePrefix starts the note recorded for a contact form message.
const ContactNotePrefix = "Contact form submission:\n\n"

// Submit handles POST /contact.
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	lead, err := h.Leads.Create(ctx, &model.Lead{
		Name:         strings.TrimSpace(req.Name),
		Email:        optString(req.Email),
		Phone:        optString(req.Phone),
		Stage:        h.Pipeline.EntryStage(),
		Source:       optString("website"),
		CustomFields: map[string]any{},
	})
	if err != nil {
		return storeError(err, "Lead")
	}

	// The note needs an author; with no admin yet the message is only in
	// the notification.
	admin, err := h.Users.FirstAdmin(ctx)
	switch {
	case err == nil:
		if _, err := h.Notes.Create(ctx, ContactNotePrefix+req.Message, lead.ID, admin.ID); err != nil {
			return storeError(err, "Note")
		}
	case errors.Is(err, repository.ErrNotFound):
		h.Log.Warn("contact form: no admin to attribute note to", zap.String("lead_id", lead.ID))
	default:
		return storeError(err, "User")
	}

	h.notify(lead)
	return c.JSON(http.StatusCreated, echo.Map{"message": "Thank you! We'll be in touch soon."})
}

// notify runs the notifier detached from the request; failures are logged
// and never reach the visitor.
func (h *ContactHandler) notify(lead model.Lead) {
	if h.Notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		err := h.Notifier.NotifyNewLead(ctx, lead)
		if err != nil {
			h.Log.Error("new lead notification failed", zap.String("lead_id", lead.ID), zap.Error(err))
		}
		if h.sent != nil {
			h.sent(err)
		}
	}()
}
