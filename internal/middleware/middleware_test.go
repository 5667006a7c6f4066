package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iliyamo/review-catalog/internal/config"
	"github.com/iliyamo/review-catalog/internal/metrics"
	"github.com/iliyamo/review-catalog/internal/utils"
)

const testSecret = "test-secret"

func newJWTServer() *echo.Echo {
	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, CurrentUserID(c))
	}, JWTAuth(testSecret))
	return e
}

func TestJWTAuth(t *testing.T) {
	good, err := utils.NewAccessToken(testSecret, "user-1", "Ana", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	forged, err := utils.NewAccessToken("other-secret", "user-1", "Ana", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + good.Token, http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic " + good.Token, http.StatusUnauthorized, "missing bearer token"},
		{"wrong key", "Bearer " + forged.Token, http.StatusUnauthorized, "invalid token"},
		{"garbage", "Bearer nope", http.StatusUnauthorized, "invalid token"},
	}
	e := newJWTServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Fatalf("body = %q, want it to contain %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestCurrentUserIDDefaultsToAnon(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := CurrentUserID(c); got != "anon" {
		t.Fatalf("CurrentUserID = %q, want anon", got)
	}
	c.Set(UserIDKey, "u-9")
	if got := CurrentUserID(c); got != "u-9" {
		t.Fatalf("CurrentUserID = %q, want u-9", got)
	}
}

func TestPrometheusMetricsUsesRoutePattern(t *testing.T) {
	e := echo.New()
	e.Use(PrometheusMetrics())
	e.GET("/v1/movies/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})

	notFound := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/v1/movies/:id", "404")
	failed := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "500")
	nfBefore, failBefore := testutil.ToFloat64(notFound), testutil.ToFloat64(failed)

	for _, path := range []string{"/v1/movies/abc", "/v1/movies/def", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(notFound) - nfBefore; got != 2 {
		t.Fatalf("404 counter moved by %v, want 2", got)
	}
	if got := testutil.ToFloat64(failed) - failBefore; got != 1 {
		t.Fatalf("500 counter moved by %v, want 1", got)
	}
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusTeapot, "tea") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Code != http.StatusTeapot || rec.Body.String() != "tea" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestDisabledMiddlewarePassThrough(t *testing.T) {
	e := echo.New()
	cache := NewReportCache(config.CacheConfig{Enabled: true}, nil)
	limit := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, cache, limit)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		if rec.Header().Get("X-Cache") != "" || rec.Header().Get("X-RateLimit-Limit") != "" {
			t.Fatal("disabled middleware touched the response")
		}
	}
}

func keyContext(method, target, route string) echo.Context {
	c := echo.New().NewContext(httptest.NewRequest(method, target, nil), httptest.NewRecorder())
	c.SetPath(route)
	return c
}

func TestReportCacheKey(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "reports", KeyStrategy: "route_query", TTL: time.Minute}

	a := ReportCacheKey(cfg, 0, keyContext(http.MethodGet, "/v1/reports/top-movies?n=3", "/v1/reports/top-movies"))
	b := ReportCacheKey(cfg, 0, keyContext(http.MethodGet, "/v1/reports/top-movies?n=3", "/v1/reports/top-movies"))
	c := ReportCacheKey(cfg, 0, keyContext(http.MethodGet, "/v1/reports/top-movies?n=4", "/v1/reports/top-movies"))

	if a != b {
		t.Fatalf("same request produced different keys %q %q", a, b)
	}
	if a == c {
		t.Fatal("different queries share a key")
	}
	if !strings.HasPrefix(a, "reports:g0:") {
		t.Fatalf("key %q is not under the prefix and generation", a)
	}
	if a == ReportCacheKey(cfg, 1, keyContext(http.MethodGet, "/v1/reports/top-movies?n=3", "/v1/reports/top-movies")) {
		t.Fatal("generations share a key")
	}

	cfg.KeyStrategy = "route"
	if ReportCacheKey(cfg, 0, keyContext(http.MethodGet, "/r?n=1", "/r")) != ReportCacheKey(cfg, 0, keyContext(http.MethodGet, "/r?n=2", "/r")) {
		t.Fatal("route strategy should ignore the query")
	}
}

func TestRateLimitKey(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl"}
	c := keyContext(http.MethodPost, "/v1/movies/1/reviews", "/v1/movies/:id/reviews")
	c.Request().RemoteAddr = "10.0.0.7:1234"
	c.Set(UserIDKey, "u-1")

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.7"},
		{"user", "rl:user:u-1"},
		{"route", "rl:route:POST /v1/movies/:id/reviews"},
		{"user_route", "rl:user:u-1:route:POST /v1/movies/:id/reviews"},
		{"", "rl:ip:10.0.0.7:user:u-1:route:POST /v1/movies/:id/reviews"},
	}
	for _, tt := range tests {
		cfg.KeyStrategy = tt.strategy
		if got := RateLimitKey(cfg, c); got != tt.want {
			t.Errorf("strategy %q: key = %q, want %q", tt.strategy, got, tt.want)
		}
	}
}
