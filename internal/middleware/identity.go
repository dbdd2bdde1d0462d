package middleware

// identity.go stores the authenticated requester on the echo context and
// reads it back for handlers and the rate limiter.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tiered-catalog/internal/service"
)

const requesterKey = "requester"

// SetRequester attaches r to the request context.
func SetRequester(c echo.Context, r service.Requester) {
	c.Set(requesterKey, r)
	c.Set("user_id", r.ID)
}

// RequesterFrom returns the requester set by Authenticate, or the zero
// (anonymous) requester.
func RequesterFrom(c echo.Context) service.Requester {
	if r, ok := c.Get(requesterKey).(service.Requester); ok {
		return r
	}
	return service.Requester{}
}

// userID returns the requester id. Unauthenticated requests are keyed by
// client address so anonymous callers never share one bucket.
func userID(c echo.Context) string {
	if id := RequesterFrom(c).ID; id != "" {
		return id
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "anon@" + ip
}
