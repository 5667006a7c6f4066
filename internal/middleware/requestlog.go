package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/logging"
)

// RequestLogger logs one line per completed request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			event := logging.Info()
			if status >= 500 {
				event = logging.Error()
			}
			event.
				Str("component", "http").
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("route", c.Path()).
				Int("status", status).
				Str("remote_addr", c.RealIP()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Dur("duration", time.Since(start)).
				Msg("request completed")
			return nil
		}
	}
}
