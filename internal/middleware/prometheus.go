package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/metrics"
)

// PrometheusMetrics records request count and latency per route pattern.
// Unmatched routes are labelled "unmatched" so raw paths never become labels.
func PrometheusMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error so the recorded status matches
				c.Error(err)
			}

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			metrics.RecordAPIRequest(c.Request().Method, endpoint, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
