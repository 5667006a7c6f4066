package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/catalog"
	"github.com/iliyamo/review-catalog/internal/validation"
)

// errDuplicateReview is the body of a 409 for a second review of a movie.
const errDuplicateReview = "duplicate review"

// catalogError maps catalog errors onto HTTP responses.
func catalogError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, catalog.ErrInvalidRating):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, catalog.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, catalog.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// invalidRequest writes a 400 for a bind or validation failure.
func invalidRequest(c echo.Context, err error) error {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error(), "fields": verr.Fields})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}

// idParam parses the :id path parameter.
func idParam(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}
