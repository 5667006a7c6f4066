package handler // package handler contains the HTTP handlers of the review API

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness for load balancers.  It never touches the catalog.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
