package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tiered-catalog/internal/middleware"
	"github.com/iliyamo/tiered-catalog/internal/service"
)

type GenreHandler struct {
	Genres *service.Genres
	Log    *zap.Logger
}

func NewGenreHandler(genres *service.Genres, log *zap.Logger) *GenreHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GenreHandler{Genres: genres, Log: log}
}

type genreReq struct {
	Name string `json:"name" validate:"required"`
}

func (h *GenreHandler) List(c echo.Context) error {
	gs, err := h.Genres.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, gs)
}

func (h *GenreHandler) Get(c echo.Context) error {
	g, err := h.Genres.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	g, err := h.Genres.Create(c.Request().Context(), middleware.RequesterFrom(c), req.Name)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *GenreHandler) Update(c echo.Context) error {
	var req genreReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	g, err := h.Genres.Rename(c.Request().Context(), middleware.RequesterFrom(c), c.Param("id"), req.Name)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GenreHandler) Delete(c echo.Context) error {
	if err := h.Genres.Delete(c.Request().Context(), middleware.RequesterFrom(c), c.Param("id")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Genre deleted"})
}
