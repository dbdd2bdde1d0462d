package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tiered-catalog/internal/service"
	"github.com/iliyamo/tiered-catalog/internal/utils"
)

// SessionCookie carries the signed session token.
const SessionCookie = "jwt"

// Resolver loads the requester a verified token was issued for.
// service.Accounts satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (service.Requester, error)
}

// Authenticate verifies the session token from the jwt cookie (or an
// Authorization: Bearer header as a fallback), loads the user on every
// request and stores the resulting requester in the context. Requests
// without a valid token are rejected with 401.
func Authenticate(secret string, users Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authorized, no token"})
			}
			sub, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authorized, token failed"})
			}
			r, err := users.Resolve(c.Request().Context(), sub)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authorized, token failed"})
				}
				c.Logger().Errorf("resolve session user: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			SetRequester(c, r)
			return next(c)
		}
	}
}

func tokenFrom(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
