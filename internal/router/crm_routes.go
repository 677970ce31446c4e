package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/septic-crm/internal/middleware" // JWT middleware
)

// RegisterCRM registers the CRM endpoints used by the staff app.  All of
// them require a valid access token; any role may use them.
func RegisterCRM(e *echo.Echo, prefix string, h Handlers, tokens middleware.AccessVerifier, cache echo.MiddlewareFunc) {
	g := e.Group(prefix, middleware.JWTAuth(tokens))

	// ---- Leads ----
	g.GET("/leads", h.Leads.List)
	g.POST("/leads", h.Leads.Create)
	g.GET("/leads/:id", h.Leads.Get)
	g.PATCH("/leads/:id", h.Leads.Update)
	g.PATCH("/leads/:id/stage", h.Leads.UpdateStage) // board drag-and-drop
	g.DELETE("/leads/:id", h.Leads.Delete)

	// ---- Activities ----
	g.GET("/activities", h.Activities.List)
	g.POST("/activities", h.Activities.Create)
	g.PATCH("/activities/:id", h.Activities.Update)
	g.DELETE("/activities/:id", h.Activities.Delete)

	// ---- Calendar ----
	g.GET("/calendar", h.Calendar.List)
	g.POST("/calendar", h.Calendar.Create)
	g.PATCH("/calendar/:id", h.Calendar.Update)
	g.DELETE("/calendar/:id", h.Calendar.Delete)

	// ---- Notes ----
	g.POST("/notes", h.Notes.Create)
	g.DELETE("/notes/:id", h.Notes.Delete)

	// ---- Documents ----
	g.GET("/documents", h.Documents.List)
	g.POST("/documents", h.Documents.Upload)
	g.DELETE("/documents/:id", h.Documents.Delete)

	// ---- Dashboard & pipeline ----
	g.GET("/dashboard/stats", h.Dashboard.Stats, cache) // cache runs after JWTAuth
	g.GET("/pipeline", h.Pipeline)
}
