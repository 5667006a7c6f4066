package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/review-catalog/internal/config"
	"github.com/iliyamo/review-catalog/internal/logging"
)

// cachedReport is what a report response looks like in Redis.
type cachedReport struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body into buf, up to limit bytes.
type bodyRecorder struct {
	http.ResponseWriter
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if !w.truncated {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.truncated = true // never store a partial body
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// ReportCacheKey builds the Redis key for a request in generation gen.  Every
// key lives under cfg.Prefix.
func ReportCacheKey(cfg config.CacheConfig, gen int64, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", c.Path()}
	case "method_route":
		parts = []string{"method", r.Method, "route", c.Path()}
	case "method_route_query":
		parts = []string{"method", r.Method, "route", c.Path(), "q", r.URL.RawQuery}
	default: // route_query
		parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
	}
	// path parameters are part of the identity of a report
	for _, name := range c.ParamNames() {
		parts = append(parts, name, c.Param(name))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:g%d:%x", cfg.Prefix, gen, sum[:])
}

// NewReportCache serves successful report responses from Redis.  It is a
// pass-through when caching is disabled or rdb is nil.
//
// The generation is read before the handler runs, so a response computed
// before a catalog write lands under the old generation and is never served.
// If the generation cannot be read the request bypasses the cache.
func NewReportCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	genKey := config.ReportGenerationKey(cfg.Prefix)
	log := logging.With().Str("component", "report-cache").Logger()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()

			gen, err := rdb.Get(ctx, genKey).Int64()
			if errors.Is(err, redis.Nil) {
				gen, err = 0, nil
			}
			if err != nil {
				log.Debug().Err(err).Msg("cache generation unavailable, bypassing cache")
				return next(c)
			}
			key := ReportCacheKey(cfg, gen, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var hit cachedReport
				if json.Unmarshal(raw, &hit) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(hit.Status, hit.ContentType, hit.Body)
				}
				log.Debug().Str("key", key).Msg("discarding undecodable cache entry")
			} else if !errors.Is(err, redis.Nil) {
				log.Debug().Err(err).Str("key", key).Msg("cache read failed")
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status != http.StatusOK || rec.truncated {
				return nil
			}
			entry, err := json.Marshal(cachedReport{
				Status:      http.StatusOK,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
			})
			if err != nil {
				return nil
			}
			// the request context may already be cancelled by the time we get here
			if err := rdb.Set(context.WithoutCancel(ctx), key, entry, ttl).Err(); err != nil {
				log.Debug().Err(err).Str("key", key).Msg("cache write failed")
			}
			return nil
		}
	}
}
