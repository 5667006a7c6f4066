package router // package router wires handlers and middleware onto the echo instance

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/review-catalog/internal/config"
	"github.com/iliyamo/review-catalog/internal/handler"
	"github.com/iliyamo/review-catalog/internal/middleware"
	"github.com/iliyamo/review-catalog/internal/service"
)

// Deps is everything the routes need.  Redis may be nil, which disables the
// report cache and the rate limiter.
type Deps struct {
	Cfg       config.Config
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Svc       *service.ReviewService
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAPI registers the /v1 catalog API.  Writes go through the token
// bucket; reports are served through the Redis report cache; review
// submission requires an access token.
func RegisterAPI(e *echo.Echo, d Deps) {
	users := handler.NewUserHandler(d.Cfg, d.Svc)
	movies := handler.NewMovieHandler(d.Svc)
	reports := handler.NewReportHandler(d.Svc)

	v1 := e.Group("/v1")
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	v1.POST("/users", users.Register, limit)
	v1.GET("/users", users.List)
	v1.GET("/users/:id", users.Get)

	v1.POST("/movies", movies.Register, limit)
	v1.GET("/movies", movies.List)
	v1.GET("/movies/:id", movies.Get)
	// JWTAuth runs first so the limiter can key on the reviewer
	v1.POST("/movies/:id/reviews", movies.SubmitReview, middleware.JWTAuth(d.Cfg.JWTSecret), limit)

	r := v1.Group("/reports", middleware.NewReportCache(d.Cache, d.Redis))
	r.GET("/critics", reports.Critics)
	r.GET("/top-movies", reports.TopMovies)
	r.GET("/average/period", reports.AverageForPeriod)
	r.GET("/average/title", reports.AverageForTitle)
}
