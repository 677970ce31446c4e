package model

// DashboardStats is the payload of the dashboard overview.
type DashboardStats struct {
	TotalLeads         int            `json:"totalLeads"`
	LeadsByStage       map[string]int `json:"leadsByStage"`
	RecentLeads        []Lead         `json:"recentLeads"`
	UpcomingActivities []Activity     `json:"upcomingActivities"`
	ConversionRate     float64        `json:"conversionRate"`
	LeadsThisMonth     int            `json:"leadsThisMonth"`
	LeadsLastMonth     int            `json:"leadsLastMonth"`
}
