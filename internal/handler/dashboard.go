package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
	"github.com/iliyamo/septic-crm/internal/pipeline"
)

// dashboardListSize is how many recent leads and upcoming activities the
// overview shows.
const dashboardListSize = 5

// DashboardHandler computes the overview numbers.
type DashboardHandler struct {
	Store    StatsStore
	Pipeline *pipeline.Pipeline
	Now      func() time.Time
	Log      *zap.Logger
}

func NewDashboardHandler(stats StatsStore, p *pipeline.Pipeline, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Store: stats, Pipeline: p, Now: time.Now, Log: log}
}

// Stats handles GET /dashboard/stats.  Months are calendar months in the
// server's local time zone.
func (h *DashboardHandler) Stats(c echo.Context) error {
	now := h.Now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)

	ctx, cancel := storeCtx(c)
	defer cancel()

	var (
		out    model.DashboardStats
		closed int
		err    error
	)
	if out.TotalLeads, err = h.Store.CountLeads(ctx, ""); err != nil {
		return storeError(err, "Lead")
	}
	if closed, err = h.Store.CountLeads(ctx, h.Pipeline.ClosedStage()); err != nil {
		return storeError(err, "Lead")
	}
	if out.LeadsThisMonth, err = h.Store.CountLeadsCreated(ctx, thisMonth, now); err != nil {
		return storeError(err, "Lead")
	}
	if out.LeadsLastMonth, err = h.Store.CountLeadsCreated(ctx, lastMonth, thisMonth); err != nil {
		return storeError(err, "Lead")
	}
	if out.LeadsByStage, err = h.Store.LeadsByStage(ctx); err != nil {
		return storeError(err, "Lead")
	}
	if out.RecentLeads, err = h.Store.RecentLeads(ctx, dashboardListSize); err != nil {
		return storeError(err, "Lead")
	}
	if out.UpcomingActivities, err = h.Store.UpcomingActivities(ctx, now, dashboardListSize); err != nil {
		return storeError(err, "Activity")
	}
	out.ConversionRate = pipeline.ConversionRate(closed, out.TotalLeads)
	return c.JSON(http.StatusOK, out)
}
