package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tiered-catalog/internal/middleware"
	"github.com/iliyamo/tiered-catalog/internal/service"
)

type reviewReq struct {
	Comment string `json:"comment" validate:"required"`
}

type deleteReviewReq struct {
	MovieID  string `json:"movieId" validate:"required"`
	ReviewID string `json:"reviewId" validate:"required"`
}

// AddReview: POST /movies/:id/reviews
func (h *MovieHandler) AddReview(c echo.Context) error {
	var req reviewReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	id := c.Param("id")
	if err := h.Catalog.AddReview(c.Request().Context(), middleware.RequesterFrom(c), id, req.Comment); err != nil {
		return writeError(c, h.Log, err)
	}
	h.purge(c, id)
	return c.JSON(http.StatusCreated, echo.Map{"message": "Review Added"})
}

// DeleteReview: DELETE /movies/reviews with {movieId, reviewId}
func (h *MovieHandler) DeleteReview(c echo.Context) error {
	var req deleteReviewReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	if err := h.Catalog.DeleteReview(c.Request().Context(), middleware.RequesterFrom(c), req.MovieID, req.ReviewID); err != nil {
		return writeError(c, h.Log, err)
	}
	h.purge(c, req.MovieID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment Deleted Successfully"})
}

// ListReviews: GET /movies/reviews
func (h *MovieHandler) ListReviews(c echo.Context) error {
	out, err := h.Catalog.ListReviews(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if out == nil {
		out = []service.ReviewEntry{}
	}
	return c.JSON(http.StatusOK, out)
}
