package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tiered-catalog/internal/middleware"
	"github.com/iliyamo/tiered-catalog/internal/model"
	"github.com/iliyamo/tiered-catalog/internal/service"
)

// maxAssetBytes bounds a single uploaded image or video.
const maxAssetBytes = 512 << 20

// Purger drops cached responses for a request path.
type Purger interface {
	Purge(ctx context.Context, path string) error
}

// MovieHandler serves the catalog and review endpoints.
type MovieHandler struct {
	Catalog *service.Catalog
	Cache   Purger // may be nil
	Log     *zap.Logger
	// BasePath is the prefix the movie routes are mounted under; it is
	// used to purge cached detail responses after a write.
	BasePath string
}

func NewMovieHandler(catalog *service.Catalog, cache Purger, log *zap.Logger, basePath string) *MovieHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MovieHandler{Catalog: catalog, Cache: cache, Log: log, BasePath: basePath}
}

func (h *MovieHandler) list(c echo.Context, op func(context.Context, service.Requester) ([]model.Movie, error)) error {
	movies, err := op(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	return c.JSON(http.StatusOK, movies)
}

// List: GET /movies
func (h *MovieHandler) List(c echo.Context) error { return h.list(c, h.Catalog.ListAccessible) }

// Newest: GET /movies/new
func (h *MovieHandler) Newest(c echo.Context) error { return h.list(c, h.Catalog.ListNewest) }

// TopRated: GET /movies/top
func (h *MovieHandler) TopRated(c echo.Context) error { return h.list(c, h.Catalog.ListTopRated) }

// Random: GET /movies/random
func (h *MovieHandler) Random(c echo.Context) error { return h.list(c, h.Catalog.ListRandom) }

// Get: GET /movies/:id (public, no tier check)
func (h *MovieHandler) Get(c echo.Context) error {
	m, err := h.Catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Create: POST /movies, multipart with image and video files.
func (h *MovieHandler) Create(c echo.Context) error {
	image, err := formFile(c, "image")
	if err != nil {
		return writeError(c, h.Log, err)
	}
	video, err := formFile(c, "video")
	if err != nil {
		return writeError(c, h.Log, err)
	}
	in := service.MovieInput{
		Name:   c.FormValue("name"),
		Genre:  c.FormValue("genre"),
		Detail: c.FormValue("detail"),
		Cast:   c.FormValue("cast"),
		Tier:   c.FormValue("tier"),
	}
	if v := strings.TrimSpace(c.FormValue("year")); v != "" {
		if in.Year, err = strconv.Atoi(v); err != nil {
			return writeError(c, h.Log, invalidField("year"))
		}
	}
	if v := strings.TrimSpace(c.FormValue("rating")); v != "" {
		if in.Rating, err = strconv.ParseFloat(v, 64); err != nil {
			return writeError(c, h.Log, invalidField("rating"))
		}
	}

	m, err := h.Catalog.Create(c.Request().Context(), middleware.RequesterFrom(c), in, image, video)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{
		"success": true,
		"message": "Movie uploaded successfully",
		"movie":   m,
	})
}

// Update: PUT /movies/:id, multipart. Empty or absent fields keep their
// stored values.
func (h *MovieHandler) Update(c echo.Context) error {
	image, err := formFile(c, "image")
	if err != nil {
		return writeError(c, h.Log, err)
	}
	video, err := formFile(c, "video")
	if err != nil {
		return writeError(c, h.Log, err)
	}
	var up service.MovieUpdate
	up.Name = formString(c, "name")
	up.Genre = formString(c, "genre")
	up.Detail = formString(c, "detail")
	up.Cast = formString(c, "cast")
	up.Tier = formString(c, "tier")
	if v := formString(c, "year"); v != nil {
		y, err := strconv.Atoi(strings.TrimSpace(*v))
		if err != nil {
			return writeError(c, h.Log, invalidField("year"))
		}
		up.Year = &y
	}
	if v := formString(c, "rating"); v != nil {
		r, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
		if err != nil {
			return writeError(c, h.Log, invalidField("rating"))
		}
		up.Rating = &r
	}

	id := c.Param("id")
	m, err := h.Catalog.Update(c.Request().Context(), middleware.RequesterFrom(c), id, up, image, video)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	h.purge(c, id)
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Movie updated successfully",
		"updatedMovie": m,
	})
}

// Delete: DELETE /movies/:id
func (h *MovieHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.Catalog.Delete(c.Request().Context(), middleware.RequesterFrom(c), id); err != nil {
		return writeError(c, h.Log, err)
	}
	h.purge(c, id)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Movie Deleted Successfully"})
}

func (h *MovieHandler) purge(c echo.Context, movieID string) {
	if h.Cache == nil {
		return
	}
	path := h.BasePath + "/movies/" + movieID
	if err := h.Cache.Purge(c.Request().Context(), path); err != nil {
		h.Log.Warn("purge cached movie failed", zap.String("path", path), zap.Error(err))
	}
}

// formFile reads an optional multipart file. A missing file, or a request
// that is not multipart at all, yields nil.
func formFile(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, invalidField(field)
	}
	if fh.Size > maxAssetBytes {
		return nil, invalidField(field + " (too large)")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxAssetBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// formString returns a pointer to a non-empty form value, nil otherwise.
func formString(c echo.Context, field string) *string {
	v := c.FormValue(field)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func invalidField(field string) error {
	return fmt.Errorf("%w: invalid %s", service.ErrValidation, field)
}
