package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
)

// CalendarHandler manages appointments on the shared calendar.
type CalendarHandler struct {
	Events EventStore
	Log    *zap.Logger
}

func NewCalendarHandler(events EventStore, log *zap.Logger) *CalendarHandler {
	return &CalendarHandler{Events: events, Log: log}
}

type createEventReq struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required,gtefield=Start"`
	AllDay      bool      `json:"allDay"`
	LeadID      string    `json:"leadId"`
}

type updateEventReq struct {
	Title       *string          `json:"title" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	Start       *time.Time       `json:"start"`
	End         *time.Time       `json:"end"`
	AllDay      *bool            `json:"allDay"`
	LeadID      Nullable[string] `json:"leadId"`
}

var errEndBeforeStart = &APIError{
	Message:    "Validation failed",
	StatusCode: http.StatusBadRequest,
	Errors:     map[string][]string{"end": {"End time must not be before start time"}},
}

// List returns events ordered by start.  The range applies only when both
// start and end are given (RFC 3339); an event matches when it lies
// entirely inside it.
func (h *CalendarHandler) List(c echo.Context) error {
	var (
		f          model.EventFilter
		start, end time.Time
	)
	err := echo.QueryParamsBinder(c).
		Time("start", &start, time.RFC3339).
		Time("end", &end, time.RFC3339).
		String("userId", &f.UserID).
		BindError()
	if err != nil {
		return badRequest("start and end must be RFC 3339 timestamps")
	}
	if !start.IsZero() && !end.IsZero() {
		f.From, f.To = &start, &end
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	events, err := h.Events.List(ctx, f)
	if err != nil {
		return storeError(err, "Event")
	}
	return c.JSON(http.StatusOK, events)
}

// Create adds an event owned by the caller.
func (h *CalendarHandler) Create(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req createEventReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	ev, err := h.Events.Create(ctx, &model.CalendarEvent{
		Title:       strings.TrimSpace(req.Title),
		Description: optString(req.Description),
		Start:       req.Start,
		End:         req.End,
		AllDay:      req.AllDay,
		LeadID:      optString(req.LeadID),
		UserID:      p.UserID,
	})
	if err != nil {
		return storeError(err, "Event")
	}
	return c.JSON(http.StatusCreated, ev)
}

// Update edits an event.  When either bound moves, the resulting interval
// is checked against the stored one.
func (h *CalendarHandler) Update(c echo.Context) error {
	var req updateEventReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	id := c.Param("id")
	if req.Start != nil || req.End != nil {
		cur, err := h.Events.GetByID(ctx, id)
		if err != nil {
			return storeError(err, "Event")
		}
		start, end := cur.Start, cur.End
		if req.Start != nil {
			start = *req.Start
		}
		if req.End != nil {
			end = *req.End
		}
		if end.Before(start) {
			return errEndBeforeStart
		}
	}

	ev, err := h.Events.Update(ctx, id, model.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		AllDay:      req.AllDay,
		LeadID:      req.LeadID.Value,
		ClearLead:   req.LeadID.Null(),
	})
	if err != nil {
		return storeError(err, "Event")
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *CalendarHandler) Delete(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Events.Delete(ctx, c.Param("id")); err != nil {
		return storeError(err, "Event")
	}
	return c.NoContent(http.StatusNoContent)
}
