package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/tokengate/rbac-api/internal/api/metrics"
	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

// RequirePermission allows the request only when the authenticated user's role
// holds the (resource, action) grant. It must run after Authenticate.
func RequirePermission(access ports.AccessEvaluator, resource, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, err := access.Authorize(c.Request().Context(), CurrentUser(c), resource, action)

			decision := "allow"
			switch {
			case errors.Is(err, domain.ErrForbidden):
				decision = "deny"
			case err != nil:
				decision = "error"
			}
			metrics.AccessDecisionsTotal.WithLabelValues(resource, action, decision).Inc()

			if err != nil {
				return err
			}
			return next(c)
		}
	}
}
