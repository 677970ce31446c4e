package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
)

// ActivityHandler manages calls, emails, meetings, tasks and notes logged
// against leads.
type ActivityHandler struct {
	Activities ActivityStore
	Log        *zap.Logger
}

func NewActivityHandler(activities ActivityStore, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{Activities: activities, Log: log}
}

type createActivityReq struct {
	Type         string     `json:"type" validate:"required,activity_type"`
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"dueDate"`
	LeadID       string     `json:"leadId"`
	AssignedToID string     `json:"assignedToId"`
}

type updateActivityReq struct {
	Title        *string          `json:"title" validate:"omitempty,min=1"`
	Description  *string          `json:"description"`
	DueDate      *time.Time       `json:"dueDate"`
	Completed    *bool            `json:"completed"`
	AssignedToID Nullable[string] `json:"assignedToId"`
}

// List returns activities newest first.
// Query: leadId, completed (true|false), assignedToId, type.
func (h *ActivityHandler) List(c echo.Context) error {
	f := model.ActivityFilter{
		LeadID:       c.QueryParam("leadId"),
		AssignedToID: c.QueryParam("assignedToId"),
		Type:         strings.ToUpper(c.QueryParam("type")),
	}
	if v := c.QueryParam("completed"); v != "" {
		done := v == "true"
		f.Completed = &done
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	list, err := h.Activities.List(ctx, f)
	if err != nil {
		return storeError(err, "Activity")
	}
	return c.JSON(http.StatusOK, list)
}

// Create logs an activity.  Without an explicit assignee it is assigned to
// the caller.
func (h *ActivityHandler) Create(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req createActivityReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	assignee := optString(req.AssignedToID)
	if assignee == nil {
		assignee = &p.UserID
	}
	a := &model.Activity{
		Type:         req.Type,
		Title:        strings.TrimSpace(req.Title),
		Description:  optString(req.Description),
		DueDate:      req.DueDate,
		LeadID:       optString(req.LeadID),
		AssignedToID: assignee,
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	created, err := h.Activities.Create(ctx, a)
	if err != nil {
		return storeError(err, "Activity")
	}
	return c.JSON(http.StatusCreated, created)
}

// Update edits title, description, due date, completion or assignee.
func (h *ActivityHandler) Update(c echo.Context) error {
	var req updateActivityReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	a, err := h.Activities.Update(ctx, c.Param("id"), model.ActivityPatch{
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       req.DueDate,
		Completed:     req.Completed,
		AssignedToID:  req.AssignedToID.Value,
		ClearAssignee: req.AssignedToID.Null(),
	})
	if err != nil {
		return storeError(err, "Activity")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ActivityHandler) Delete(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Activities.Delete(ctx, c.Param("id")); err != nil {
		return storeError(err, "Activity")
	}
	return c.NoContent(http.StatusNoContent)
}
