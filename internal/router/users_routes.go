package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/septic-crm/internal/handler"    // user handlers
	"github.com/iliyamo/septic-crm/internal/middleware" // JWT + role middlewares
)

// RegisterUsers registers the staff account endpoints.  Listing is open to
// every signed-in user; creating and deleting accounts is admin only.
func RegisterUsers(e *echo.Echo, prefix string, u *handler.UserHandler, tokens middleware.AccessVerifier) {
	g := e.Group(prefix+"/users", middleware.JWTAuth(tokens))
	g.GET("", u.List)
	// The role gate must follow JWTAuth; it relies on the identity it sets.
	g.POST("", u.Create, middleware.RequireAdmin())
	g.DELETE("/:id", u.Delete, middleware.RequireAdmin())
}
