package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/septic-crm/internal/pipeline"
)

type pipelineResp struct {
	Stages      []pipeline.Stage `json:"stages"`
	EntryStage  string           `json:"entryStage"`
	ClosedStage string           `json:"closedStage"`
	Strict      bool             `json:"strict"`
}

// Pipeline returns a handler describing the configured stages so the board
// can render its columns.
func Pipeline(p *pipeline.Pipeline) echo.HandlerFunc {
	resp := pipelineResp{
		Stages:      p.Stages(),
		EntryStage:  p.EntryStage(),
		ClosedStage: p.ClosedStage(),
		Strict:      p.Strict(),
	}
	if resp.Stages == nil {
		resp.Stages = []pipeline.Stage{}
	}
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, resp)
	}
}
