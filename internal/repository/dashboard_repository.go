package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/septic-crm/internal/model"
)

// DashboardRepo runs the aggregate queries behind the dashboard overview.
type DashboardRepo struct {
	db         *sql.DB
	leads      *LeadRepo
	activities *ActivityRepo
}

func NewDashboardRepo(db *sql.DB) *DashboardRepo {
	return &DashboardRepo{db: db, leads: NewLeadRepo(db), activities: NewActivityRepo(db)}
}

// CountLeads counts all leads, or only those in stage when it is non-empty.
func (r *DashboardRepo) CountLeads(ctx context.Context, stage string) (int, error) {
	var n int
	var err error
	if stage == "" {
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads").Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads WHERE stage = ?", stage).Scan(&n)
	}
	return n, err
}

// CountLeadsCreated counts leads created in [from, to).
func (r *DashboardRepo) CountLeadsCreated(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leads WHERE created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).Scan(&n)
	return n, err
}

// LeadsByStage returns the lead count per stage key present in the table.
func (r *DashboardRepo) LeadsByStage(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT stage, COUNT(*) FROM leads GROUP BY stage")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			stage string
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		out[stage] = n
	}
	return out, rows.Err()
}

// RecentLeads returns the newest limit leads.
func (r *DashboardRepo) RecentLeads(ctx context.Context, limit int) ([]model.Lead, error) {
	page, err := r.leads.List(ctx, model.LeadFilter{Page: 1, PageSize: limit})
	return page.Data, err
}

// UpcomingActivities returns incomplete activities due from now on.
func (r *DashboardRepo) UpcomingActivities(ctx context.Context, from time.Time, limit int) ([]model.Activity, error) {
	return r.activities.Upcoming(ctx, from, limit)
}
