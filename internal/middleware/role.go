package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/septic-crm/internal/model" // role names
)

// RequireRole returns a middleware that lets the request through only when
// the authenticated user's role is one of roles; otherwise it answers 403
// and the handler never runs.  It must be mounted after JWTAuth: reaching it
// without an identity on the context means the route was wired wrongly, so
// it panics instead of answering (the recover middleware turns that into a
// logged 500).
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Identity(c)
			if !ok {
				panic("middleware.RequireRole used on a route without JWTAuth: " + c.Path())
			}
			if !allowed[p.Role] {
				return c.JSON(http.StatusForbidden, errorBody(http.StatusForbidden, "Admin access required"))
			}
			return next(c)
		}
	}
}

// RequireAdmin restricts a route to ADMIN users.
func RequireAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }
