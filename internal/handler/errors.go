package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/repository"
	"github.com/iliyamo/septic-crm/internal/utils"
)

// APIError is the single error body every endpoint returns:
// {message, statusCode, errors?}.  Errors maps a JSON field name to the
// problems found with it and is only present on validation failures.
type APIError struct {
	Message    string              `json:"message"`
	StatusCode int                 `json:"statusCode"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

func newAPIError(status int, msg string) *APIError {
	return &APIError{Message: msg, StatusCode: status}
}

func badRequest(msg string) *APIError   { return newAPIError(http.StatusBadRequest, msg) }
func unauthorized(msg string) *APIError { return newAPIError(http.StatusUnauthorized, msg) }
func notFound(msg string) *APIError     { return newAPIError(http.StatusNotFound, msg) }

// storeError turns a repository error into the API error for it.  what names
// the record in a not-found message ("Lead", "Activity").  Errors it does
// not recognise are wrapped and end up as a logged 500.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(what + " not found")
	case errors.Is(err, repository.ErrEmailExists):
		return newAPIError(http.StatusConflict, "Email already registered")
	case errors.Is(err, repository.ErrInvalidReference):
		return badRequest("Referenced lead or user does not exist")
	case errors.Is(err, repository.ErrUserHasRecords):
		return newAPIError(http.StatusConflict, "User still has records")
	case errors.Is(err, utils.ErrPasswordTooLong):
		return &APIError{Message: "Validation failed", StatusCode: http.StatusBadRequest,
			Errors: map[string][]string{"password": {"Password must be at most 72 bytes"}}}
	}
	return fmt.Errorf("%s store: %w", what, err)
}

// ErrorHandler renders every error that escapes a handler or middleware in
// the APIError shape.  echo's own errors (unknown route, wrong method, body
// too large) keep their status; anything else is logged and becomes a 500
// whose message does not leak internals.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var (
			apiErr  *APIError
			httpErr *echo.HTTPError
			body    *APIError
		)
		switch {
		case errors.As(err, &apiErr):
			body = apiErr
		case errors.As(err, &httpErr):
			msg := http.StatusText(httpErr.Code)
			if s, ok := httpErr.Message.(string); ok && s != "" {
				msg = s
			}
			body = newAPIError(httpErr.Code, msg)
			if httpErr.Code >= http.StatusInternalServerError {
				log.Error("request failed", zap.String("path", c.Request().URL.Path), zap.Error(err))
			}
		default:
			log.Error("unhandled error", zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path), zap.Error(err))
			body = newAPIError(http.StatusInternalServerError, "Internal server error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(body.StatusCode)
		} else {
			err = c.JSON(body.StatusCode, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
