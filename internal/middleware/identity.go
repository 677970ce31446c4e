package middleware

// identity.go stores and retrieves the authenticated caller on the echo
// context.  JWTAuth writes it; RequireRole and the handlers read it.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/septic-crm/internal/utils"
)

// Context keys.  user_id and role are also set individually so that
// key-building middleware (rate limiter, logs) can read them cheaply.
const (
	ctxAuth   = "auth"
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// SetIdentity attaches p to the request context.
func SetIdentity(c echo.Context, p utils.AuthPayload) {
	c.Set(ctxAuth, p)
	c.Set(ctxUserID, p.UserID)
	c.Set(ctxEmail, p.Email)
	c.Set(ctxRole, p.Role)
}

// Identity returns the payload attached by JWTAuth.  ok is false on routes
// that are not behind JWTAuth.
func Identity(c echo.Context) (utils.AuthPayload, bool) {
	p, ok := c.Get(ctxAuth).(utils.AuthPayload)
	return p, ok
}

// userID returns the caller's id, or "anon" when nobody is authenticated.
func userID(c echo.Context) string {
	if v, ok := c.Get(ctxUserID).(string); ok && v != "" {
		return v
	}
	return "anon"
}
