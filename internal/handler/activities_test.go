package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/septic-crm/internal/model"
)

func newActivitiesEcho(acts *fakeActivities) *echo.Echo {
	h := NewActivityHandler(acts, testLog)
	e := newTestEcho()
	g := e.Group("/activities", as(regularID))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return e
}

func TestActivityCreateDefaultsAssignee(t *testing.T) {
	acts := &fakeActivities{}
	e := newActivitiesEcho(acts)

	rec := do(t, e, http.MethodPost, "/activities",
		map[string]any{"type": "CALL", "title": "Call back", "leadId": "lead-1", "dueDate": "2026-05-01T09:00:00Z"})
	expectStatus(t, rec, http.StatusCreated)
	a := decode[model.Activity](t, rec)
	if a.AssignedToID == nil || *a.AssignedToID != regularID.UserID {
		t.Errorf("assignee = %v, want caller", a.AssignedToID)
	}
	if a.Completed || a.DueDate == nil || a.LeadID == nil {
		t.Errorf("activity = %+v", a)
	}

	rec = do(t, e, http.MethodPost, "/activities",
		map[string]any{"type": "TASK", "title": "Pump tank", "assignedToId": "user-7"})
	expectStatus(t, rec, http.StatusCreated)
	if a := decode[model.Activity](t, rec); *a.AssignedToID != "user-7" {
		t.Errorf("explicit assignee = %s", *a.AssignedToID)
	}
}

func TestActivityCreateRejectsUnknownType(t *testing.T) {
	e := newActivitiesEcho(&fakeActivities{})
	rec := do(t, e, http.MethodPost, "/activities", map[string]any{"type": "VISIT", "title": "x"})
	got := expectError(t, rec, http.StatusBadRequest, "Validation failed")
	if got.Errors["type"][0] != "Type must be one of: CALL, EMAIL, MEETING, TASK, NOTE" {
		t.Errorf("errors = %v", got.Errors)
	}
}

func TestActivityListFilters(t *testing.T) {
	acts := &fakeActivities{}
	e := newActivitiesEcho(acts)

	expectStatus(t, do(t, e, http.MethodGet, "/activities?leadId=lead-1&type=call&completed=false&assignedToId=u", nil), http.StatusOK)
	f := acts.last
	if f.LeadID != "lead-1" || f.Type != "CALL" || f.AssignedToID != "u" || f.Completed == nil || *f.Completed {
		t.Errorf("filter = %+v", f)
	}

	expectStatus(t, do(t, e, http.MethodGet, "/activities", nil), http.StatusOK)
	if acts.last.Completed != nil {
		t.Error("completed filter should be unset")
	}
}

func TestActivityCompleteAndUnassign(t *testing.T) {
	acts := &fakeActivities{}
	e := newActivitiesEcho(acts)
	rec := do(t, e, http.MethodPost, "/activities", map[string]any{"type": "EMAIL", "title": "Send quote"})
	a := decode[model.Activity](t, rec)

	rec = do(t, e, http.MethodPatch, "/activities/"+a.ID, `{"completed":true,"assignedToId":null}`)
	expectStatus(t, rec, http.StatusOK)
	got := decode[model.Activity](t, rec)
	if !got.Completed || got.AssignedToID != nil {
		t.Errorf("updated = %+v", got)
	}

	expectStatus(t, do(t, e, http.MethodDelete, "/activities/"+a.ID, nil), http.StatusNoContent)
	expectError(t, do(t, e, http.MethodPatch, "/activities/"+a.ID, map[string]any{"completed": false}),
		http.StatusNotFound, "Activity not found")
}
