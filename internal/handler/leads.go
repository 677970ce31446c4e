package handler

import (
	"errors"
	"math"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
	"github.com/iliyamo/septic-crm/internal/pipeline"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// LeadHandler serves the lead board: listing, detail with child records,
// create, full update, stage moves and delete.
type LeadHandler struct {
	Leads      LeadStore
	Notes      NoteStore
	Activities ActivityStore
	Documents  DocumentStore
	Files      FileStore // optional; uploaded files of deleted leads are removed through it
	Pipeline   *pipeline.Pipeline
	Log        *zap.Logger
}

func NewLeadHandler(leads LeadStore, notes NoteStore, activities ActivityStore, documents DocumentStore,
	files FileStore, p *pipeline.Pipeline, log *zap.Logger) *LeadHandler {
	return &LeadHandler{Leads: leads, Notes: notes, Activities: activities, Documents: documents,
		Files: files, Pipeline: p, Log: log}
}

// ----- DTOs -----

type createLeadReq struct {
	Name         string         `json:"name" validate:"required"`
	Email        string         `json:"email" validate:"omitempty,email"`
	Phone        string         `json:"phone"`
	Stage        string         `json:"stage"`
	Source       string         `json:"source"`
	AssignedToID string         `json:"assignedToId"`
	CustomFields map[string]any `json:"customFields"`
}

type updateLeadReq struct {
	Name         *string          `json:"name" validate:"omitempty,min=1"`
	Email        *string          `json:"email" validate:"omitempty,email_or_empty"`
	Phone        *string          `json:"phone"`
	Stage        *string          `json:"stage"`
	Source       *string          `json:"source"`
	AssignedToID Nullable[string] `json:"assignedToId"`
	CustomFields map[string]any   `json:"customFields"`
}

type stageReq struct {
	Stage string `json:"stage"`
}

// stageError maps pipeline errors to 400s.
func stageError(err error) error {
	switch {
	case errors.Is(err, pipeline.ErrStageRequired):
		return badRequest("Stage is required")
	case errors.Is(err, pipeline.ErrUnknownStage):
		return badRequest("Unknown pipeline stage")
	}
	return err
}

// List returns one page of leads, newest first.
// Query: page, pageSize, stage, search, assignedToId.
func (h *LeadHandler) List(c echo.Context) error {
	f := model.LeadFilter{Page: 1, PageSize: defaultPageSize}
	err := echo.QueryParamsBinder(c).
		Int("page", &f.Page).
		Int("pageSize", &f.PageSize).
		String("stage", &f.Stage).
		String("search", &f.Search).
		String("assignedToId", &f.AssignedToID).
		BindError()
	if err != nil {
		return badRequest("page and pageSize must be integers")
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	// Keeps (page-1)*pageSize inside the range MySQL accepts for OFFSET.
	if last := math.MaxInt32 / f.PageSize; f.Page > last {
		f.Page = last
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	page, err := h.Leads.List(ctx, f)
	if err != nil {
		return storeError(err, "Lead")
	}
	return c.JSON(http.StatusOK, page)
}

// Get returns a lead with its notes, activities and documents.
func (h *LeadHandler) Get(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	id := c.Param("id")
	lead, err := h.Leads.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "Lead")
	}
	detail := model.LeadDetail{Lead: lead}
	if detail.Notes, err = h.Notes.ListByLead(ctx, id); err != nil {
		return storeError(err, "Note")
	}
	if detail.Activities, err = h.Activities.List(ctx, model.ActivityFilter{LeadID: id}); err != nil {
		return storeError(err, "Activity")
	}
	if detail.Documents, err = h.Documents.List(ctx, id); err != nil {
		return storeError(err, "Document")
	}
	return c.JSON(http.StatusOK, detail)
}

// Create adds a lead.  Without an explicit stage it starts in the entry
// stage of the pipeline.
func (h *LeadHandler) Create(c echo.Context) error {
	var req createLeadReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	stage, err := h.Pipeline.InitialStage(req.Stage)
	if err != nil {
		return stageError(err)
	}
	custom := req.CustomFields
	if custom == nil {
		custom = map[string]any{}
	}
	lead := &model.Lead{
		Name:         strings.TrimSpace(req.Name),
		Email:        optString(req.Email),
		Phone:        optString(req.Phone),
		Stage:        stage,
		Source:       optString(req.Source),
		AssignedToID: optString(req.AssignedToID),
		CustomFields: custom,
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	created, err := h.Leads.Create(ctx, lead)
	if err != nil {
		return storeError(err, "Lead")
	}
	return c.JSON(http.StatusCreated, created)
}

// Update rewrites any subset of a lead's fields.  A stage given here moves
// the lead like UpdateStage does, with no ordering rule.
func (h *LeadHandler) Update(c echo.Context) error {
	var req updateLeadReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	patch := model.LeadPatch{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Source:        req.Source,
		AssignedToID:  req.AssignedToID.Value,
		ClearAssignee: req.AssignedToID.Null(),
		CustomFields:  req.CustomFields,
	}
	if req.Stage != nil {
		stage, err := h.Pipeline.Transition("", *req.Stage)
		if err != nil {
			return stageError(err)
		}
		patch.Stage = &stage
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	lead, err := h.Leads.Update(ctx, c.Param("id"), patch)
	if err != nil {
		return storeError(err, "Lead")
	}
	return c.JSON(http.StatusOK, lead)
}

// UpdateStage moves a lead to another stage, the drag-and-drop operation of
// the board.  Any stage may follow any other.
func (h *LeadHandler) UpdateStage(c echo.Context) error {
	var req stageReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if strings.TrimSpace(req.Stage) == "" {
		return badRequest("Stage is required")
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	id := c.Param("id")
	current, err := h.Leads.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "Lead")
	}
	stage, err := h.Pipeline.Transition(current.Stage, req.Stage)
	if err != nil {
		return stageError(err)
	}
	lead, err := h.Leads.UpdateStage(ctx, id, stage)
	if err != nil {
		return storeError(err, "Lead")
	}
	h.Log.Debug("lead stage changed", zap.String("lead_id", id),
		zap.String("from", current.Stage), zap.String("to", lead.Stage))
	return c.JSON(http.StatusOK, lead)
}

// Delete removes a lead.  Its child rows cascade in the database; uploaded
// files are removed afterwards on a best-effort basis.
func (h *LeadHandler) Delete(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	id := c.Param("id")
	var docs []model.Document
	if h.Files != nil {
		var err error
		if docs, err = h.Documents.List(ctx, id); err != nil {
			return storeError(err, "Document")
		}
	}
	if err := h.Leads.Delete(ctx, id); err != nil {
		return storeError(err, "Lead")
	}
	for _, d := range docs {
		if err := h.Files.Delete(ctx, path.Base(d.URL)); err != nil {
			h.Log.Warn("remove document file", zap.String("document_id", d.ID), zap.Error(err))
		}
	}
	return c.NoContent(http.StatusNoContent)
}
