package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers
	"time"     // time stamps the health response

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health reports that the API is up, with the server's current time.  It is
// mounted under the API prefix for the web clients.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Healthz is the plain-text probe used by load balancers and container
// orchestrators.  It returns "ok" with a 200 status code.
func Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok") // String writes plain text
}
