package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tiered-catalog/internal/handler"
)

// RegisterUsers registers registration, session and profile endpoints.
func RegisterUsers(g *echo.Group, h *handler.UserHandler, gd Guards) {
	g.POST("/users", h.Register, gd.Public...)
	g.GET("/users", h.List, gd.Admin...)
	g.POST("/users/auth", h.Login, gd.Public...)
	g.POST("/users/logout", h.Logout, gd.User...)
	g.GET("/users/profile", h.Profile, gd.User...)
	g.PUT("/users/profile", h.UpdateProfile, gd.User...)
}

// RegisterGenres registers the genre list: reads are public, writes are
// admin only.
func RegisterGenres(g *echo.Group, h *handler.GenreHandler, gd Guards) {
	g.GET("/genres", h.List, gd.Public...)
	g.GET("/genres/:id", h.Get, gd.Public...)
	g.POST("/genres", h.Create, gd.Admin...)
	g.PUT("/genres/:id", h.Update, gd.Admin...)
	g.DELETE("/genres/:id", h.Delete, gd.Admin...)
}
