package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/iliyamo/review-catalog/internal/catalog"
	"github.com/iliyamo/review-catalog/internal/config"
	"github.com/iliyamo/review-catalog/internal/logging"
	"github.com/iliyamo/review-catalog/internal/middleware"
	"github.com/iliyamo/review-catalog/internal/queue"
	"github.com/iliyamo/review-catalog/internal/router"
	"github.com/iliyamo/review-catalog/internal/seed"
	"github.com/iliyamo/review-catalog/internal/service"
)

const shutdownTimeout = 10 * time.Second

var (
	consume bool   // also run the review.submitted consumer
	logDir  string // where the consumer appends review.log
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Start the review catalog HTTP API.  Configuration comes from the environment (and an optional .env file).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&consume, "consume", false, "run the review event consumer alongside the API")
	serveCmd.Flags().StringVar(&logDir, "log-dir", "logs", "directory for the consumer's review.log")
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logging.With().Str("component", "server").Logger()

	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient(ctx) // nil when Redis is unreachable
	if rdb != nil {
		defer rdb.Close()
	}

	var publisher service.Publisher
	if cfg.QueueEnabled {
		p := service.NewAMQPPublisher(cfg.AMQPURL)
		defer p.Close()
		publisher = p
	}
	svc := service.NewReviewService(catalog.New(), publisher, service.NewRedisReportCache(rdb, cacheCfg.Prefix))

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, svc, f); err != nil {
			return err
		}
	}

	if consume {
		go func() {
			if err := queue.StartReviewConsumer(ctx, cfg.AMQPURL, logDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("review consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.PrometheusMetrics())

	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Deps{
		Cfg:       cfg,
		Cache:     cacheCfg,
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Svc:       svc,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Bool("queue", cfg.QueueEnabled).Bool("redis", rdb != nil).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
