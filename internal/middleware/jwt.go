package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/septic-crm/internal/utils" // AuthPayload and token verification
)

// AccessVerifier verifies access tokens.  *utils.TokenService satisfies it.
type AccessVerifier interface {
	VerifyAccess(token string) (utils.AuthPayload, error)
}

// errorBody matches the API-wide error shape {message, statusCode}.
func errorBody(status int, msg string) echo.Map {
	return echo.Map{"message": msg, "statusCode": status}
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// attaches the decoded AuthPayload to the request context.  Every request is
// verified from scratch; there is no session store and no sliding expiry.
// The two failure messages are deliberately generic: an expired token and a
// forged one are indistinguishable to the client.
func JWTAuth(tokens AccessVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// NoToken: header missing or not a bearer credential.
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, errorBody(http.StatusUnauthorized, "Authentication required"))
			}

			// Verifying: signature, algorithm and expiry are checked together.
			payload, err := tokens.VerifyAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody(http.StatusUnauthorized, "Invalid or expired token"))
			}

			// Authenticated: expose identity to downstream handlers.
			SetIdentity(c, payload)
			return next(c)
		}
	}
}
