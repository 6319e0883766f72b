package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tokengate/rbac-api/internal/api/metrics"
	"github.com/tokengate/rbac-api/internal/core/ports"
)

// AdminHandler exposes role and permission administration. The admin check
// itself happens in the service.
type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func observe(operation string, err error) {
	metrics.AdminOperationsTotal.WithLabelValues(operation, metrics.Outcome(err)).Inc()
}

// CreateRole creates a role by name.
//
// @Summary      Create a role
// @Description  Creating a role whose name already exists succeeds without changes.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        body  body      createRoleRequest  true  "Role"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /admin/role [post]
func (h *AdminHandler) CreateRole(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createRoleRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	created, err := h.admin.CreateRole(c.Request().Context(), actor, req.Name)
	observe("create_role", err)
	if err != nil {
		return err
	}

	status := "role created"
	if !created {
		status = "role already exist"
	}
	return c.JSON(http.StatusOK, statusResponse{Status: status})
}

// CreatePermission grants (resource, action) to a role.
//
// @Summary      Grant a permission to a role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        body  body      createPermissionRequest  true  "Permission"
// @Success      200   {object}  permissionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/permission [post]
func (h *AdminHandler) CreatePermission(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createPermissionRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	perm, err := h.admin.CreatePermission(c.Request().Context(), actor, req.RoleID, req.Resource, req.Action)
	observe("create_permission", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, permissionResponse{
		ID:       perm.ID,
		RoleID:   perm.RoleID,
		Resource: perm.Resource,
		Action:   perm.Action,
	})
}

// DeletePermission removes a single grant by id.
//
// @Summary      Remove a permission
// @Tags         admin
// @Produce      json
// @Security     SessionToken
// @Param        id   path      int  true  "Permission ID"
// @Success      200  {object}  statusResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/permission/{id} [delete]
func (h *AdminHandler) DeletePermission(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}

	err = h.admin.DeletePermission(c.Request().Context(), actor, id)
	observe("delete_permission", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "permission removed"})
}

// ChangeUserRole replaces a user's role.
//
// @Summary      Assign a role to a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        body  body      changeUserRoleRequest  true  "Assignment"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/user/role [put]
func (h *AdminHandler) ChangeUserRole(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req changeUserRoleRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	err = h.admin.ChangeUserRole(c.Request().Context(), actor, req.UserID, req.RoleID)
	observe("change_user_role", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "role updated"})
}

// ListUsers returns every account with its role name.
//
// @Summary      List all users
// @Tags         admin
// @Produce      json
// @Security     SessionToken
// @Success      200  {array}   userView
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	users, err := h.admin.ListUsers(c.Request().Context(), actor)
	observe("list_users", err)
	if err != nil {
		return err
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	return c.JSON(http.StatusOK, views)
}
