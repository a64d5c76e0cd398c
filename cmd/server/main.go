package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/live-show-lineup/internal/app"
	"github.com/iliyamo/live-show-lineup/internal/config"
	"github.com/iliyamo/live-show-lineup/internal/handler"
	applogger "github.com/iliyamo/live-show-lineup/internal/logger"
	"github.com/iliyamo/live-show-lineup/internal/middleware"
	"github.com/iliyamo/live-show-lineup/internal/queue"
	"github.com/iliyamo/live-show-lineup/internal/router"
	"github.com/iliyamo/live-show-lineup/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	health := &handler.HealthHandler{}
	if a.DB != nil {
		health.DB = a.DB
	}
	router.RegisterRoutes(e, router.Routes{
		Health:    health,
		Admin:     handler.NewAdminHandler(a.Lineup, logger),
		Performer: handler.NewPerformerHandler(a.Lineup, logger),
		Public:    handler.NewPublicHandler(a.Lineup, logger),
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, a.Redis, logger),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env),
			zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return worker.NewSweeper(a.Lineup, cfg.Workers.SweepInterval, logger).Run(gctx)
	})

	if cfg.RabbitMQ.Enabled {
		pub := queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
		relay := queue.NewRelay(a.Store, pub, cfg.Workers.RelayBatchSize, logger)
		consumer := queue.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.Workers.DeliveryLogPath, logger)
		g.Go(func() error { return relay.Run(gctx, cfg.Workers.RelayInterval) })
		g.Go(func() error { return consumer.Run(gctx) })
	} else {
		logger.Warn("rabbitmq disabled; notifications stay pending in the outbox")
	}

	return g.Wait()
}
