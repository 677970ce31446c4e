package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/iliyamo/septic-crm/internal/model"
	"github.com/iliyamo/septic-crm/internal/pipeline"
)

type fakeStats struct {
	total, closed int
	byStage       map[string]int
	created       map[time.Month]int
	closedStage   string
	upcomingFrom  time.Time
}

func (f *fakeStats) CountLeads(_ context.Context, stage string) (int, error) {
	if stage == "" {
		return f.total, nil
	}
	f.closedStage = stage
	return f.closed, nil
}

func (f *fakeStats) CountLeadsCreated(_ context.Context, from, _ time.Time) (int, error) {
	return f.created[from.Month()], nil
}

func (f *fakeStats) LeadsByStage(context.Context) (map[string]int, error) { return f.byStage, nil }

func (f *fakeStats) RecentLeads(_ context.Context, limit int) ([]model.Lead, error) {
	return make([]model.Lead, 0, limit), nil
}

func (f *fakeStats) UpcomingActivities(_ context.Context, from time.Time, _ int) ([]model.Activity, error) {
	f.upcomingFrom = from
	return []model.Activity{}, nil
}

func TestDashboardStats(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	stats := &fakeStats{
		total:   8,
		closed:  2,
		byStage: map[string]int{"lead": 4, "contacted": 2, "closed": 2},
		created: map[time.Month]int{time.March: 3, time.February: 5},
	}
	h := NewDashboardHandler(stats, pipeline.New(defaultStages, false), testLog)
	h.Now = func() time.Time { return now }
	e := newTestEcho()
	e.GET("/dashboard/stats", h.Stats)

	rec := do(t, e, http.MethodGet, "/dashboard/stats", nil)
	expectStatus(t, rec, http.StatusOK)
	got := decode[model.DashboardStats](t, rec)

	if got.TotalLeads != 8 || got.ConversionRate != 25 {
		t.Errorf("total = %d conversion = %v", got.TotalLeads, got.ConversionRate)
	}
	if stats.closedStage != "closed" {
		t.Errorf("closed stage = %q", stats.closedStage)
	}
	if got.LeadsThisMonth != 3 || got.LeadsLastMonth != 5 {
		t.Errorf("this month = %d last month = %d", got.LeadsThisMonth, got.LeadsLastMonth)
	}
	if got.LeadsByStage["lead"] != 4 || got.RecentLeads == nil || got.UpcomingActivities == nil {
		t.Errorf("stats = %+v", got)
	}
	if !stats.upcomingFrom.Equal(now) {
		t.Errorf("upcoming from %v, want now", stats.upcomingFrom)
	}
}

func TestDashboardStatsEmpty(t *testing.T) {
	h := NewDashboardHandler(&fakeStats{byStage: map[string]int{}}, pipeline.New(defaultStages, false), testLog)
	e := newTestEcho()
	e.GET("/dashboard/stats", h.Stats)

	rec := do(t, e, http.MethodGet, "/dashboard/stats", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[model.DashboardStats](t, rec); got.ConversionRate != 0 || got.TotalLeads != 0 {
		t.Errorf("stats = %+v", got)
	}
}
