package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sneakerdex/internal/errors"
)

// respondError renders err through the domain error taxonomy.
func respondError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidBody() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

func invalidRequest(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error:   errors.ErrValidation.Error(),
		Code:    "VALIDATION_FAILED",
		Details: err.Error(),
	})
}
