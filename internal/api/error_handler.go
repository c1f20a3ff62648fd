package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/helpdesk/helpdesk-api/internal/api/handler"
	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes and messages.
//   - Logs unexpected errors with their cause; the client sees the
//     operation's message, plus the cause only when debug is set.
//   - Renders the response envelope: {"success": false, "message": ...}.
func NewHTTPErrorHandler(log zerolog.Logger, debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, cause := resolveError(err)
		if code >= http.StatusInternalServerError {
			log.Error().
				Err(cause).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		body := handler.Envelope{Success: false, Message: msg}
		if debug && cause != nil && code >= http.StatusInternalServerError {
			body.Error = cause.Error()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

// resolveError maps err to a status code and client message. cause is the
// underlying error for server-side failures.
func resolveError(err error) (code int, msg string, cause error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error(), nil
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, "User already exists with this email.", nil
	case errors.Is(err, domain.ErrTeamExists):
		return http.StatusBadRequest, "Team already exists with this name.", nil
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "Access denied. No token provided.", nil
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired.", nil
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, "Invalid token.", nil
	case errors.Is(err, domain.ErrInvalidPassword):
		return http.StatusUnauthorized, "Invalid password.", nil
	case errors.Is(err, domain.ErrAdminRequired):
		return http.StatusForbidden, "Access denied. Admin role required.", nil
	case errors.Is(err, domain.ErrAgentOrAdminRequired):
		return http.StatusForbidden, "Access denied. Agent or admin role required.", nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Unauthorized to update this user.", nil
	case errors.Is(err, domain.ErrRoleChangeForbidden):
		return http.StatusForbidden, "Only admin can change user roles.", nil
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found.", nil
	case errors.Is(err, domain.ErrTeamNotFound):
		return http.StatusNotFound, "Team not found.", nil
	case errors.Is(err, echo.ErrNotFound), errors.Is(err, echo.ErrMethodNotAllowed):
		return http.StatusNotFound, "Route not found", nil
	}

	// Echo's own errors (bind failures) and handler-tagged failures.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Code >= http.StatusInternalServerError {
			cause = he.Internal
			if cause == nil {
				cause = he
			}
		}
		return he.Code, msg, cause
	}

	// Unexpected error: the real cause is only logged.
	return http.StatusInternalServerError, "Internal server error.", err
}
