package handler // handler translates HTTP requests into service calls

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tiered-catalog/internal/service"
)

// writeError maps service errors to a status code and an {"error": msg}
// body. Anything unrecognised is logged and reported as 500 without
// leaking details.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrDuplicateReview),
		errors.Is(err, service.ErrMissingAsset):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrGenreExists),
		errors.Is(err, service.ErrGenreInUse):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrUpstreamUpload):
		status, msg = http.StatusBadGateway, service.ErrUpstreamUpload.Error()
	default:
		if log != nil {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}
	}
	return c.JSON(status, echo.Map{"error": msg})
}

// bind decodes the request body into v and runs the registered validator.
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return fmt.Errorf("%w: invalid body", service.ErrValidation)
	}
	if err := c.Validate(v); err != nil {
		return fmt.Errorf("%w: %s", service.ErrValidation, err.Error())
	}
	return nil
}
