package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/iliyamo/tiered-catalog/internal/handler"
	"github.com/iliyamo/tiered-catalog/internal/metrics"
	"github.com/iliyamo/tiered-catalog/internal/middleware"
	"github.com/iliyamo/tiered-catalog/internal/validation"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// Deps carries everything the HTTP surface needs. Cache and RateLimit may
// be nil.
type Deps struct {
	JWTSecret  string
	CORSOrigin string
	Log        *zap.Logger

	Users     middleware.Resolver
	Movies    *handler.MovieHandler
	Accounts  *handler.UserHandler
	Genres    *handler.GenreHandler
	Health    *handler.Health
	Cache     *middleware.ResponseCache
	RateLimit echo.MiddlewareFunc
}

// New builds the echo instance with global middleware and all routes.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(metrics.Middleware())
	if d.CORSOrigin != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{d.CORSOrigin},
			AllowCredentials: true,
		}))
	}

	RegisterRoutes(e, d.Health)

	api := e.Group(BasePath)
	gd := NewGuards(middleware.Authenticate(d.JWTSecret, d.Users), middleware.RequireAdmin(), d.RateLimit)
	RegisterMovies(api, d.Movies, d.Cache, gd)
	RegisterUsers(api, d.Accounts, gd)
	RegisterGenres(api, d.Genres, gd)
	return e
}

// Guards are the per-route middleware chains. The rate limiter runs after
// authentication so user keyed buckets see the caller.
type Guards struct {
	Public []echo.MiddlewareFunc // limit
	User   []echo.MiddlewareFunc // auth, limit
	Admin  []echo.MiddlewareFunc // auth, limit, admin
}

// NewGuards builds the chains; limit may be nil.
func NewGuards(auth, admin, limit echo.MiddlewareFunc) Guards {
	if limit == nil {
		return Guards{
			Public: nil,
			User:   []echo.MiddlewareFunc{auth},
			Admin:  []echo.MiddlewareFunc{auth, admin},
		}
	}
	return Guards{
		Public: []echo.MiddlewareFunc{limit},
		User:   []echo.MiddlewareFunc{auth, limit},
		Admin:  []echo.MiddlewareFunc{auth, limit, admin},
	}
}

// with returns chain followed by more without aliasing chain.
func with(chain []echo.MiddlewareFunc, more ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(chain)+len(more))
	return append(append(out, chain...), more...)
}

// RegisterRoutes registers routes that do not require authentication and
// live outside the API prefix: the health check and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, h *handler.Health) {
	if h == nil {
		h = &handler.Health{}
	}
	e.GET("/healthz", h.Handle)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
