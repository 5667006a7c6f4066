package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/catalog"
	"github.com/iliyamo/review-catalog/internal/service"
	"github.com/iliyamo/review-catalog/internal/validation"
)

// MaxTopN caps the n query parameter of the top-movies report.
const MaxTopN = 100

// ReportHandler serves the read-only reports under /v1/reports.
type ReportHandler struct {
	Svc *service.ReviewService
}

func NewReportHandler(svc *service.ReviewService) *ReportHandler {
	return &ReportHandler{Svc: svc}
}

type periodQuery struct {
	Start string `query:"start" validate:"required,datetime=2006-01-02"`
	End   string `query:"end" validate:"required,datetime=2006-01-02"`
}

type titleQuery struct {
	Title string `query:"title" validate:"required"`
}

// Critics ranks users by engagement tier, then by review count.
func (h *ReportHandler) Critics(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Svc.RankedCritics()})
}

// TopMovies returns the n best rated movies (default 5, at most MaxTopN).
// n <= 0 yields an empty list.
func (h *ReportHandler) TopMovies(c echo.Context) error {
	n := catalog.DefaultTopN
	if raw := c.QueryParam("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "n must be an integer"})
		}
		n = min(v, MaxTopN)
	}
	return c.JSON(http.StatusOK, echo.Map{"n": n, "items": h.Svc.TopMovies(n)})
}

// AverageForPeriod averages ratings of movies released between start and
// end, both inclusive.
func (h *ReportHandler) AverageForPeriod(c echo.Context) error {
	q := periodQuery{Start: c.QueryParam("start"), End: c.QueryParam("end")}
	if err := validation.Struct(q); err != nil {
		return invalidRequest(c, err)
	}
	start, err1 := time.Parse(service.DateLayout, q.Start)
	end, err2 := time.Parse(service.DateLayout, q.End)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be YYYY-MM-DD"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"start":   q.Start,
		"end":     q.End,
		"average": h.Svc.AverageForPeriod(start, end),
	})
}

// AverageForTitle averages the first movie whose title matches, ignoring
// case.  Unknown titles average 0.
func (h *ReportHandler) AverageForTitle(c echo.Context) error {
	q := titleQuery{Title: c.QueryParam("title")}
	if err := validation.Struct(q); err != nil {
		return invalidRequest(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"title": q.Title, "average": h.Svc.AverageForTitle(q.Title)})
}
