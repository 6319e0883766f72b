package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tokengate/rbac-api/internal/core/ports"
)

// UserHandler serves the authenticated user's own account.
type UserHandler struct {
	profile ports.ProfileService
}

func NewUserHandler(profile ports.ProfileService) *UserHandler {
	return &UserHandler{profile: profile}
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     SessionToken
// @Success      200  {object}  userView
// @Failure      401  {object}  errorResponse
// @Router       /user/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newUserView(user))
}

// Update changes the user's first and/or last name. Empty values are ignored.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        body  body      updateProfileRequest  true  "Names to change"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /user/update [put]
func (h *UserHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	in := ports.UpdateProfileInput{FirstName: nonEmpty(req.FirstName), LastName: nonEmpty(req.LastName)}
	if err := h.profile.UpdateProfile(c.Request().Context(), user.ID, in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "updated"})
}

// Delete deactivates the account. Every session of the user stops working.
//
// @Summary      Deactivate account
// @Tags         users
// @Produce      json
// @Security     SessionToken
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  errorResponse
// @Router       /user/delete [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.profile.Deactivate(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "disabled"})
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
