package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin aborts with 403 unless Authenticate stored an admin
// requester. It must run after Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !RequesterFrom(c).IsAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized as an admin"})
			}
			return next(c)
		}
	}
}
