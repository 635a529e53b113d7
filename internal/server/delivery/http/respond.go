package http

import (
	"errors"
	"net/http"

	"papertrade/internal/server/dto"
	"papertrade/internal/server/service"

	"github.com/labstack/echo/v4"
)

// respondError maps domain errors to HTTP statuses. Unknown errors become a
// generic 500 so internal details never leak to the client.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrInsufficientFunds), errors.Is(err, service.ErrInsufficientShares):
		return c.JSON(http.StatusUnprocessableEntity, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrQuoteUnavailable):
		return c.JSON(http.StatusServiceUnavailable, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrAdvisorUnavailable):
		return c.JSON(http.StatusServiceUnavailable, dto.Fail("AI advisor is not configured"))
	default:
		return c.JSON(http.StatusInternalServerError, dto.Fail("Something went wrong, please try again"))
	}
}
