package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ItemsHandler is a placeholder resource guarded by the items/read and
// items/write permissions.
type ItemsHandler struct{}

func NewItemsHandler() *ItemsHandler {
	return &ItemsHandler{}
}

// List returns a static item list.
//
// @Summary      List items
// @Tags         items
// @Produce      json
// @Security     SessionToken
// @Success      200  {array}   itemResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /items [get]
func (h *ItemsHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, []itemResponse{
		{ID: 1, Name: "Item A", Description: "..."},
		{ID: 2, Name: "Item B", Description: "..."},
	})
}

// Create accepts an item without storing it.
//
// @Summary      Create an item
// @Tags         items
// @Produce      json
// @Security     SessionToken
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /items [post]
func (h *ItemsHandler) Create(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{Status: "created"})
}
