package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/tokengate/rbac-api/internal/api/metrics"
	"github.com/tokengate/rbac-api/internal/core/domain"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

const (
	userKey  = "user"
	tokenKey = "session_token"
)

// Authenticate resolves the session token carried in header and injects the
// active user and the token into the context.
func Authenticate(resolver ports.IdentityResolver, header string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(header)

			user, err := resolver.Authenticate(c.Request().Context(), token)
			if err != nil {
				metrics.AuthenticationFailuresTotal.WithLabelValues(failureReason(err)).Inc()
				return err
			}

			c.Set(userKey, user)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// CurrentUser returns the user injected by Authenticate, or nil.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userKey).(*domain.User)
	return user
}

// SessionToken returns the token the current request authenticated with.
func SessionToken(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return "missing_token"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrInactiveUser):
		return "inactive_user"
	default:
		return "error"
	}
}
