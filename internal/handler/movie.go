package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/middleware"
	"github.com/iliyamo/review-catalog/internal/service"
	"github.com/iliyamo/review-catalog/internal/validation"
)

// MovieHandler serves /v1/movies and review submission.
type MovieHandler struct {
	Svc *service.ReviewService
}

func NewMovieHandler(svc *service.ReviewService) *MovieHandler {
	return &MovieHandler{Svc: svc}
}

type registerMovieReq struct {
	Title       string `json:"title" validate:"required,max=300"`
	ReleaseDate string `json:"release_date" validate:"required,datetime=2006-01-02"`
}

// Score is a pointer so a missing score is told apart from 0; the range
// itself is checked by the catalog.
type submitReviewReq struct {
	Score *int   `json:"score" validate:"required"`
	Text  string `json:"text" validate:"max=5000"`
}

// Register adds a movie.  release_date is a calendar date (YYYY-MM-DD).
func (h *MovieHandler) Register(c echo.Context) error {
	var req registerMovieReq
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.Struct(req); err != nil {
		return invalidRequest(c, err)
	}
	released, err := time.Parse(service.DateLayout, req.ReleaseDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "release_date must be YYYY-MM-DD"})
	}
	m := h.Svc.RegisterMovie(c.Request().Context(), req.Title, released)
	return c.JSON(http.StatusCreated, m)
}

// List returns every movie in registration order.
func (h *MovieHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Svc.Movies()})
}

// Get returns one movie with its average.
func (h *MovieHandler) Get(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, err := h.Svc.Movie(id)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// SubmitReview records a review by the authenticated user.
//
//	201 accepted, 409 already reviewed, 422 score outside 1..5.
func (h *MovieHandler) SubmitReview(c echo.Context) error {
	movieID, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	userID, err := uuid.Parse(middleware.CurrentUserID(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token subject"})
	}

	var req submitReviewReq
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	res, err := h.Svc.SubmitReview(c.Request().Context(), userID, movieID, *req.Score, req.Text)
	if err != nil {
		return catalogError(c, err)
	}
	if !res.Accepted {
		return c.JSON(http.StatusConflict, echo.Map{"error": errDuplicateReview})
	}
	return c.JSON(http.StatusCreated, res)
}
