package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tiered-catalog/internal/handler"
	"github.com/iliyamo/tiered-catalog/internal/middleware"
)

// RegisterMovies registers the catalog and review endpoints. Listings need
// a signed-in user because results depend on the tier; the detail route is
// public and served through the response cache.
func RegisterMovies(g *echo.Group, h *handler.MovieHandler, cache *middleware.ResponseCache, gd Guards) {
	g.GET("/movies", h.List, gd.User...)
	g.GET("/movies/new", h.Newest, gd.User...)
	g.GET("/movies/top", h.TopRated, gd.User...)
	g.GET("/movies/random", h.Random, gd.User...)

	// Static review paths are matched before /movies/:id.
	g.GET("/movies/reviews", h.ListReviews, gd.Admin...)
	g.DELETE("/movies/reviews", h.DeleteReview, gd.Admin...)

	if cache != nil {
		g.GET("/movies/:id", h.Get, with(gd.Public, cache.Middleware())...)
	} else {
		g.GET("/movies/:id", h.Get, gd.Public...)
	}
	g.POST("/movies", h.Create, gd.Admin...)
	g.PUT("/movies/:id", h.Update, gd.Admin...)
	g.DELETE("/movies/:id", h.Delete, gd.Admin...)
	g.POST("/movies/:id/reviews", h.AddReview, gd.User...)
}
