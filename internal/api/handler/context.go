package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tokengate/rbac-api/internal/api/middleware"
	"github.com/tokengate/rbac-api/internal/core/domain"
)

// currentUser returns the user injected by middleware.Authenticate. A missing
// user means the route was mounted without the middleware.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrMissingToken
	}
	return user, nil
}
