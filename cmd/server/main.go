package main // Entry point package

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
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/iliyamo/watch-rotation-scheduler/internal/catalog"
	"github.com/iliyamo/watch-rotation-scheduler/internal/config"
	"github.com/iliyamo/watch-rotation-scheduler/internal/database"
	"github.com/iliyamo/watch-rotation-scheduler/internal/handler"
	"github.com/iliyamo/watch-rotation-scheduler/internal/logging"
	"github.com/iliyamo/watch-rotation-scheduler/internal/middleware"
	"github.com/iliyamo/watch-rotation-scheduler/internal/queue"
	"github.com/iliyamo/watch-rotation-scheduler/internal/repository"
	"github.com/iliyamo/watch-rotation-scheduler/internal/router"
	"github.com/iliyamo/watch-rotation-scheduler/internal/service"
)

func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, App: "watch-rotation-scheduler"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db, logging.Component(log, "migrate")); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, catalog cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var inventories catalog.Source = repository.NewContentRepo(db)
	if cc := config.LoadCatalogCacheConfig(); cc.Enabled {
		inventories = catalog.NewCached(inventories, rdb, cc.TTL, cc.Prefix, logging.Component(log, "catalog-cache"))
	}

	var events service.EventPublisher
	if cfg.AMQPURL != "" {
		events = service.NewRabbitPublisher(cfg.AMQPURL, logging.Component(log, "publisher"))
	}

	gc := cfg.Generation
	gen := service.NewGenerator(
		inventories,
		repository.NewQueueRepo(db),
		repository.NewRotationGroupRepo(db),
		service.NewSQLStore(repository.NewScheduleWriter(db)),
		events,
		service.Options{
			MaxDays: gc.MaxDays,
			Resolve: catalog.ResolveOptions{Workers: gc.CatalogWorkers, Attempts: gc.CatalogAttempts, Delay: gc.CatalogRetryDelay},
		},
		logging.Component(log, "generator"),
	)
	schedules := handler.NewScheduleHandler(gen, repository.NewScheduleEntryRepo(db), gc.Timeout, logging.Component(log, "http"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(requestLogger(logging.Component(log, "http")))
	router.RegisterRoutes(e, db)
	router.RegisterSchedules(e, schedules, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logging.Component(log, "ratelimit")))

	var wg conc.WaitGroup
	if cfg.AMQPURL != "" {
		wg.Go(func() {
			out := logging.RotatingFile("logs/schedule.log")
			defer out.Close()
			clog := logging.Component(log, "schedule-consumer")
			if err := queue.StartScheduleConsumer(ctx, cfg.AMQPURL, out, clog); err != nil && !errors.Is(err, context.Canceled) {
				clog.Error().Err(err).Msg("consumer stopped")
			}
		})
	}

	addr := ":" + cfg.Port
	wg.Go(func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	})

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gc.Timeout+5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	wg.Wait()
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError || v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	})
}
