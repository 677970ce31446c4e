package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/septic-crm/internal/model"
)

func newCalendarEcho(events *fakeEvents) *echo.Echo {
	h := NewCalendarHandler(events, testLog)
	e := newTestEcho()
	g := e.Group("/calendar", as(regularID))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return e
}

func TestCalendarCreate(t *testing.T) {
	events := &fakeEvents{}
	e := newCalendarEcho(events)

	rec := do(t, e, http.MethodPost, "/calendar", map[string]any{
		"title": "Inspection", "start": "2026-05-01T09:00:00Z", "end": "2026-05-01T10:00:00Z", "leadId": "lead-1",
	})
	expectStatus(t, rec, http.StatusCreated)
	ev := decode[model.CalendarEvent](t, rec)
	if ev.UserID != regularID.UserID || ev.LeadID == nil || ev.End.Sub(ev.Start) != time.Hour {
		t.Errorf("event = %+v", ev)
	}

	rec = do(t, e, http.MethodPost, "/calendar", map[string]any{
		"title": "Backwards", "start": "2026-05-01T10:00:00Z", "end": "2026-05-01T09:00:00Z",
	})
	got := expectError(t, rec, http.StatusBadRequest, "Validation failed")
	if got.Errors["end"][0] != "End time must not be before start time" {
		t.Errorf("errors = %v", got.Errors)
	}

	rec = do(t, e, http.MethodPost, "/calendar", map[string]any{"title": "No times"})
	got = expectError(t, rec, http.StatusBadRequest, "Validation failed")
	if got.Errors["start"][0] != "Start time is required" {
		t.Errorf("errors = %v", got.Errors)
	}
}

func TestCalendarUpdateChecksInterval(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	events := &fakeEvents{items: []model.CalendarEvent{{ID: "ev-1", Title: "Pump", Start: start, End: start.Add(time.Hour), UserID: "u"}}}
	e := newCalendarEcho(events)

	// Moving only the start past the stored end is rejected.
	rec := do(t, e, http.MethodPatch, "/calendar/ev-1", map[string]any{"start": "2026-05-01T11:00:00Z"})
	expectError(t, rec, http.StatusBadRequest, "Validation failed")

	rec = do(t, e, http.MethodPatch, "/calendar/ev-1", map[string]any{"start": "2026-05-01T11:00:00Z", "end": "2026-05-01T12:00:00Z"})
	expectStatus(t, rec, http.StatusOK)
	if ev := decode[model.CalendarEvent](t, rec); ev.Start.Hour() != 11 || ev.End.Hour() != 12 {
		t.Errorf("event = %+v", ev)
	}

	rec = do(t, e, http.MethodPatch, "/calendar/ev-9", map[string]any{"end": "2026-05-01T12:00:00Z"})
	expectError(t, rec, http.StatusNotFound, "Event not found")
}

func TestCalendarListRange(t *testing.T) {
	events := &fakeEvents{}
	e := newCalendarEcho(events)

	expectStatus(t, do(t, e, http.MethodGet, "/calendar?start=2026-05-01T00:00:00Z&end=2026-06-01T00:00:00Z", nil), http.StatusOK)
	if events.last.From == nil || events.last.To == nil || events.last.To.Month() != time.June {
		t.Errorf("filter = %+v", events.last)
	}

	// A single bound is ignored.
	expectStatus(t, do(t, e, http.MethodGet, "/calendar?start=2026-05-01T00:00:00Z", nil), http.StatusOK)
	if events.last.From != nil || events.last.To != nil {
		t.Errorf("half-open range applied: %+v", events.last)
	}

	expectError(t, do(t, e, http.MethodGet, "/calendar?start=yesterday&end=today", nil), http.StatusBadRequest,
		"start and end must be RFC 3339 timestamps")
}
