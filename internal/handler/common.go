package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/septic-crm/internal/middleware"
	"github.com/iliyamo/septic-crm/internal/utils"
)

// storeTimeout bounds every store call made on behalf of a request.
const storeTimeout = 5 * time.Second

func storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// bindValid decodes the request body into v and validates it.
func bindValid(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return badRequest("Invalid request body")
	}
	return c.Validate(v)
}

// caller returns the authenticated identity.  Routes using it are mounted
// behind JWTAuth, so a missing identity is reported as 401 rather than
// trusted.
func caller(c echo.Context) (utils.AuthPayload, error) {
	p, ok := middleware.Identity(c)
	if !ok {
		return utils.AuthPayload{}, newAPIError(http.StatusUnauthorized, "Authentication required")
	}
	return p, nil
}

// optString trims s and returns nil when nothing is left.
func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
