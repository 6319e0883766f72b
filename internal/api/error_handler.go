package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tokengate/rbac-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error categories to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Invalid credentials carry a fixed message so that the cause stays hidden.
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return http.StatusUnauthorized, "Invalid credentials"
	}

	var de *domain.Error
	if errors.As(err, &de) {
		if code, ok := statusFor(de.Kind); ok {
			return code, de.Msg
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func statusFor(kind error) (int, bool) {
	switch kind {
	case domain.ErrUnauthenticated:
		return http.StatusUnauthorized, true
	case domain.ErrForbidden:
		return http.StatusForbidden, true
	case domain.ErrNotFound:
		return http.StatusNotFound, true
	case domain.ErrConflict:
		return http.StatusConflict, true
	case domain.ErrInvalidInput:
		return http.StatusBadRequest, true
	}
	return 0, false
}
