package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"paydash/internal/cache"
	"paydash/internal/cli"
	apphttp "paydash/internal/http"
	"paydash/internal/log"
	"paydash/internal/metrics"
	"paydash/internal/render"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = time.Minute
)

func main() {
	cli.LoadEnvFile()

	setup, err := cli.Bootstrap()
	if err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	cfg, logger := setup.Config, setup.Logger

	if err := run(setup); err != nil {
		logger.Error("Server exited with error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		os.Exit(1)
	}
	logger.Info("Server stopped", "port", cfg.Port)
}

func run(setup *cli.Setup) error {
	cfg, logger := setup.Config, setup.Logger

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	ds, res, err := cli.LoadDataset(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	m, err := metrics.New()
	if err != nil {
		return err
	}

	images := cache.NewLRUCache[cache.Image](cfg.ChartCacheSize, cfg.ChartCacheTTL).Observe(m)
	manager := cache.NewManager(logger)
	manager.Register(images)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:     ":" + cfg.Port,
		Dataset:  ds,
		Adapter:  setup.Adapter,
		Renderer: render.New(render.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}),
		Metrics:  m,
		Logger:   logger,
		Backend:  res.Backend,
		Images:   images,

		ImagesPerMinute: cfg.ChartRatePerMinute,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"chart_size", fmt.Sprintf("%dx%d", cfg.ChartWidth, cfg.ChartHeight),
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error { return srv.RunBackground(gctx) })
	g.Go(func() error { return manager.Run(gctx, cacheCleanupInterval) })

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
			return err
		}
		return nil
	})

	return g.Wait()
}
