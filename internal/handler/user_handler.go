package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sneakerdex/internal/errors"
	"sneakerdex/internal/middleware"
)

// UserHandler serves the signed-in user.
type UserHandler struct{}

// NewUserHandler creates a handler layer.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondError(errors.ErrUnauthorized)
	}
	return c.JSON(http.StatusOK, user)
}
